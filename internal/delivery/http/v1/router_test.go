package v1_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"techgallery-backend/config"
	v1 "techgallery-backend/internal/delivery/http/v1"
	"techgallery-backend/internal/domain"
	"techgallery-backend/internal/usecase"
	"techgallery-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type MockSkillUsecase struct {
	mock.Mock
}

func (m *MockSkillUsecase) AddOrUpdateSkill(ctx context.Context, skill *domain.Skill, caller *domain.Caller) (*domain.Skill, error) {
	args := m.Called(ctx, skill, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Skill), args.Error(1)
}

func (m *MockSkillUsecase) GetUserSkill(ctx context.Context, techID string, caller *domain.Caller) (*domain.Skill, error) {
	args := m.Called(ctx, techID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Skill), args.Error(1)
}

func (m *MockSkillUsecase) GetUserSkillForUser(ctx context.Context, techID string, user *domain.User) (*domain.Skill, error) {
	args := m.Called(ctx, techID, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Skill), args.Error(1)
}

func (m *MockSkillUsecase) ImportUserSkills(ctx context.Context, records []domain.ImportUserSkillRecord, caller *domain.Caller) (*domain.ImportResult, error) {
	args := m.Called(ctx, records, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ImportResult), args.Error(1)
}

func (m *MockSkillUsecase) ListUserSkills(ctx context.Context, caller *domain.Caller) ([]domain.Skill, error) {
	args := m.Called(ctx, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Skill), args.Error(1)
}

func (m *MockSkillUsecase) GetUserSkillHistory(ctx context.Context, techID string, caller *domain.Caller) ([]domain.Skill, error) {
	args := m.Called(ctx, techID, caller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Skill), args.Error(1)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) ResolveCaller(ctx context.Context, token, login, email string) (*domain.User, error) {
	args := m.Called(ctx, token, login, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserDirectory) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserDirectory) SyncByLogin(ctx context.Context, login, email string) (*domain.User, error) {
	args := m.Called(ctx, login, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type envelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	RequestID string          `json:"request_id"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(uc *MockSkillUsecase, users *MockUserDirectory) *gin.Engine {
	return v1.NewRouter(v1.RouterDeps{
		SkillUC:  uc,
		Users:    users,
		HealthUC: usecase.NewHealthUsecase(nil),
		Config: &config.Config{
			JWTSecret:              testSecret,
			ImportRateLimit:        2,
			RateLimitWindowSeconds: 60,
		},
	})
}

func signToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": "caller@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func do(t *testing.T, r http.Handler, method, path, token, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func isCaller(sub string) interface{} {
	return mock.MatchedBy(func(c *domain.Caller) bool { return c != nil && c.IdentityToken == sub })
}

func TestHealth(t *testing.T) {
	r := newTestRouter(new(MockSkillUsecase), new(MockUserDirectory))
	w, env := do(t, r, http.MethodGet, "/v1/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, env.RequestID)
}

func TestAuthRequired(t *testing.T) {
	uc := new(MockSkillUsecase)
	r := newTestRouter(uc, new(MockUserDirectory))

	w, _ := do(t, r, http.MethodPost, "/v1/skills", "", `{"technology_id":"java","value":4}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, r, http.MethodGet, "/v1/skills/java", "not-a-jwt", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	uc.AssertNotCalled(t, "AddOrUpdateSkill", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddOrUpdateSkillEndpoint(t *testing.T) {
	t.Run("Should pass the rating and caller to the usecase", func(t *testing.T) {
		uc := new(MockSkillUsecase)
		r := newTestRouter(uc, new(MockUserDirectory))
		created := &domain.Skill{ID: 12, UserID: "u-1", TechnologyID: "java", Value: domain.IntPtr(4), Active: true}
		uc.On("AddOrUpdateSkill", mock.Anything, mock.MatchedBy(func(s *domain.Skill) bool {
			return s != nil && s.TechnologyID == "java" && s.Value != nil && *s.Value == 4
		}), isCaller("google-123")).Return(created, nil)

		w, env := do(t, r, http.MethodPost, "/v1/skills", signToken(t, "google-123"), `{"technology_id":"java","value":4}`)
		assert.Equal(t, http.StatusCreated, w.Code)

		var got domain.Skill
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, int64(12), got.ID)
		assert.True(t, got.Active)
	})

	t.Run("Should forward an empty body as a missing skill", func(t *testing.T) {
		uc := new(MockSkillUsecase)
		r := newTestRouter(uc, new(MockUserDirectory))
		uc.On("AddOrUpdateSkill", mock.Anything, (*domain.Skill)(nil), isCaller("google-123")).
			Return(nil, apperror.BadRequest(domain.MsgSkillMissing))

		w, env := do(t, r, http.MethodPost, "/v1/skills", signToken(t, "google-123"), "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, domain.MsgSkillMissing, env.Message)
	})

	t.Run("Should reject malformed JSON", func(t *testing.T) {
		uc := new(MockSkillUsecase)
		r := newTestRouter(uc, new(MockUserDirectory))

		w, _ := do(t, r, http.MethodPost, "/v1/skills", signToken(t, "google-123"), `{"value":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		uc.AssertNotCalled(t, "AddOrUpdateSkill", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should hide internal errors", func(t *testing.T) {
		uc := new(MockSkillUsecase)
		r := newTestRouter(uc, new(MockUserDirectory))
		uc.On("AddOrUpdateSkill", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, apperror.Internal(errors.New("pq: connection refused")))

		w, env := do(t, r, http.MethodPost, "/v1/skills", signToken(t, "google-123"), `{"technology_id":"java","value":4}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, env.Message, "connection refused")
	})
}

func TestGetUserSkillEndpoints(t *testing.T) {
	t.Run("Should map a missing skill to 404", func(t *testing.T) {
		uc := new(MockSkillUsecase)
		r := newTestRouter(uc, new(MockUserDirectory))
		uc.On("GetUserSkill", mock.Anything, "java", isCaller("google-123")).
			Return(nil, apperror.NotFound(domain.MsgUserSkillNotExists))

		w, env := do(t, r, http.MethodGet, "/v1/skills/java", signToken(t, "google-123"), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.False(t, env.Success)
		assert.Equal(t, domain.MsgUserSkillNotExists, env.Message)
	})

	t.Run("Should return null data when a known user has no skill", func(t *testing.T) {
		uc := new(MockSkillUsecase)
		users := new(MockUserDirectory)
		r := newTestRouter(uc, users)
		user := &domain.User{ID: "3f1c2a9e-8a55-4c4e-9d51-4f0b8d7f6a10"}
		users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
		uc.On("GetUserSkillForUser", mock.Anything, "java", user).Return(nil, nil)

		w, env := do(t, r, http.MethodGet, "/v1/users/"+user.ID+"/skills/java", signToken(t, "google-123"), "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "null", string(env.Data))
	})

	t.Run("Should return 404 for an unknown user", func(t *testing.T) {
		uc := new(MockSkillUsecase)
		users := new(MockUserDirectory)
		r := newTestRouter(uc, users)
		users.On("GetByID", mock.Anything, "nobody").Return(nil, nil)

		w, _ := do(t, r, http.MethodGet, "/v1/users/nobody/skills/java", signToken(t, "google-123"), "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		uc.AssertNotCalled(t, "GetUserSkillForUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Should list history", func(t *testing.T) {
		uc := new(MockSkillUsecase)
		r := newTestRouter(uc, new(MockUserDirectory))
		uc.On("GetUserSkillHistory", mock.Anything, "java", isCaller("google-123")).
			Return([]domain.Skill{{ID: 2, Active: true}, {ID: 1}}, nil)

		w, env := do(t, r, http.MethodGet, "/v1/skills/java/history", signToken(t, "google-123"), "")
		assert.Equal(t, http.StatusOK, w.Code)
		var got []domain.Skill
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Len(t, got, 2)
	})
}

func TestImportEndpoint(t *testing.T) {
	uc := new(MockSkillUsecase)
	r := newTestRouter(uc, new(MockUserDirectory))
	records := []domain.ImportUserSkillRecord{{Email: "user@example.com", TechSkill: []string{"[Java];4;[Go];2"}}}
	uc.On("ImportUserSkills", mock.Anything, records, isCaller("importer")).
		Return(&domain.ImportResult{Records: 1, Skills: 2}, nil)

	body := `[{"email":"user@example.com","tech_skill":["[Java];4;[Go];2"]}]`
	token := signToken(t, "importer")

	for i := 0; i < 2; i++ {
		w, env := do(t, r, http.MethodPost, "/v1/skills/import", token, body)
		require.Equal(t, http.StatusOK, w.Code)
		var got domain.ImportResult
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, 2, got.Skills)
	}

	w, _ := do(t, r, http.MethodPost, "/v1/skills/import", token, body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	uc.AssertNumberOfCalls(t, "ImportUserSkills", 2)

	// Limits are per caller.
	other := signToken(t, "someone-else")
	uc.On("ImportUserSkills", mock.Anything, mock.Anything, isCaller("someone-else")).
		Return(nil, apperror.BadRequest(domain.MsgMalformedImportEntry))
	w, _ = do(t, r, http.MethodPost, "/v1/skills/import", other, `[{"email":"x@example.com","tech_skill":["Java;4"]}]`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
