package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"techgallery-backend/config"
	"techgallery-backend/internal/delivery/http/response"
	"techgallery-backend/internal/domain"
	"techgallery-backend/pkg/auth"
	"techgallery-backend/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthMiddleware validates the bearer token and stores the subject as the
// caller identity. Whether that identity exists in the directory is decided
// by the usecases, not here.
func AuthMiddleware(jwksProvider *auth.Provider, cfg *config.Config) gin.HandlerFunc {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "RS256"}))

	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if tokenString == "" {
			response.Error(c, http.StatusUnauthorized, "Authorization header required", nil)
			c.Abort()
			return
		}

		token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			switch token.Method.(type) {
			case *jwt.SigningMethodHMAC:
				if cfg.JWTSecret == "" {
					return nil, fmt.Errorf("HS256 token received but JWT_SECRET is not configured")
				}
				return []byte(cfg.JWTSecret), nil
			case *jwt.SigningMethodRSA:
				if jwksProvider == nil {
					return nil, fmt.Errorf("RS256 token received but JWKS_URL is not configured")
				}
				return jwksProvider.KeyFunc(token)
			}
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		})
		if err != nil || !token.Valid {
			reason := "invalid token"
			if err != nil {
				reason = err.Error()
			}
			security.Default().LogUnauthorized(c.Request.Context(), c.ClientIP(),
				c.GetString(string(domain.KeyRequestID)), c.FullPath(), reason)
			response.Error(c, http.StatusUnauthorized, "Invalid token", nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Error(c, http.StatusUnauthorized, "Invalid claims", nil)
			c.Abort()
			return
		}

		// An empty "sub" is passed through: the usecases reject it as a
		// malformed identity (400) rather than a missing one (401).
		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)

		c.Set(string(domain.KeyIdentity), sub)
		c.Set(string(domain.KeyUserEmail), email)

		c.Next()
	}
}

// CallerFromContext returns the authenticated caller, or nil when the
// request did not pass AuthMiddleware.
func CallerFromContext(c *gin.Context) *domain.Caller {
	v, ok := c.Get(string(domain.KeyIdentity))
	if !ok {
		return nil
	}
	identity, _ := v.(string)
	return &domain.Caller{
		IdentityToken: identity,
		Email:         c.GetString(string(domain.KeyUserEmail)),
	}
}
