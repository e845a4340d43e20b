package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"
	"sync"
	"time"

	"techgallery-backend/pkg/logger"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventUnauthorizedAccess EventType = "unauthorized_access"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventSkillImport        EventType = "skill_import"
	EventSkillImportAborted EventType = "skill_import_aborted"
)

// Event is one security-relevant occurrence. SubjectValue never carries raw
// PII: e-mails are masked and opaque identifiers hashed.
type Event struct {
	Timestamp    time.Time
	Event        EventType
	SubjectType  string // "email", "ip", "identity"
	SubjectValue string
	IP           string
	RequestID    string
	Details      map[string]interface{}
}

// AuditLogger writes security events as structured zap entries.
type AuditLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
}

var (
	defaultAudit *AuditLogger
	defaultOnce  sync.Once
)

func NewAuditLogger(base *zap.Logger, serviceName, environment string) *AuditLogger {
	if base == nil {
		base = zap.NewNop()
	}
	return &AuditLogger{
		zapLogger:   base.Named("audit"),
		serviceName: serviceName,
		environment: environment,
	}
}

// Default returns the process-wide audit logger, built on the application
// logger the first time it is requested.
func Default() *AuditLogger {
	defaultOnce.Do(func() {
		if defaultAudit == nil {
			defaultAudit = NewAuditLogger(logger.Log.Desugar(), "techgallery-skills", getEnvironment())
		}
	})
	return defaultAudit
}

// SetDefault replaces the process-wide audit logger. Call it before serving.
func SetDefault(a *AuditLogger) {
	defaultOnce.Do(func() {})
	defaultAudit = a
}

func (a *AuditLogger) Log(_ context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	level := zapcore.WarnLevel
	switch event.Event {
	case EventSkillImport:
		level = zapcore.InfoLevel
	case EventUnauthorizedAccess, EventRateLimitTriggered, EventSkillImportAborted:
		level = zapcore.WarnLevel
	}

	fields := []zap.Field{
		zap.String("service", a.serviceName),
		zap.String("env", a.environment),
		zap.String("event", string(event.Event)),
		zap.Time("timestamp", event.Timestamp),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
		fields = append(fields, zap.String("subject_value", maskValue(event.SubjectType, event.SubjectValue)))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	a.zapLogger.Log(level, string(event.Event), fields...)
}

func (a *AuditLogger) LogUnauthorized(ctx context.Context, ip, requestID, path, reason string) {
	a.Log(ctx, Event{
		Event:     EventUnauthorizedAccess,
		IP:        ip,
		RequestID: requestID,
		Details:   map[string]interface{}{"path": path, "reason": reason},
	})
}

func (a *AuditLogger) LogRateLimitTriggered(ctx context.Context, key, ip, requestID, endpoint string) {
	a.Log(ctx, Event{
		Event:        EventRateLimitTriggered,
		SubjectType:  "identity",
		SubjectValue: key,
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]interface{}{"endpoint": endpoint},
	})
}

// LogSkillImport records one feed record applied to a directory user.
func (a *AuditLogger) LogSkillImport(ctx context.Context, email, userID string, skills int) {
	a.Log(ctx, Event{
		Event:        EventSkillImport,
		SubjectType:  "email",
		SubjectValue: email,
		Details:      map[string]interface{}{"user_id": userID, "skills": skills},
	})
}

func (a *AuditLogger) LogSkillImportAborted(ctx context.Context, email string, record int, reason string) {
	a.Log(ctx, Event{
		Event:        EventSkillImportAborted,
		SubjectType:  "email",
		SubjectValue: email,
		Details:      map[string]interface{}{"record": record, "reason": reason},
	})
}

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "***" + email[1:]
	}
	return email[:1] + "***" + email[at:]
}

// HashValue returns a short SHA256 digest of value, for logging without PII.
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}

func maskValue(subjectType, value string) string {
	switch subjectType {
	case "email":
		return MaskEmail(value)
	case "ip":
		return value
	default:
		return HashValue(value)
	}
}

func getEnvironment() string {
	if os.Getenv("GIN_MODE") == "release" {
		return "production"
	}
	return "development"
}
