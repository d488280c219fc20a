package contextutil

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is private so keys never collide with other packages.
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	userIDKey    contextKey = "user_id"
	companyIDKey contextKey = "company_id"
	loggerKey    contextKey = "logger"
)

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

func GetRequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey).(string); ok {
		return rid
	}
	return ""
}

func WithUserID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

func GetUserID(ctx context.Context) string {
	if uid, ok := ctx.Value(userIDKey).(string); ok {
		return uid
	}
	return ""
}

func WithCompanyID(ctx context.Context, cid string) context.Context {
	return context.WithValue(ctx, companyIDKey, cid)
}

func GetCompanyID(ctx context.Context) string {
	if cid, ok := ctx.Value(companyIDKey).(string); ok {
		return cid
	}
	return ""
}

// WithLogger stores a request-scoped zap logger in the context.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger returns the request-scoped logger, then defaultLogger, then a
// no-op logger. It never returns nil.
func GetLogger(ctx context.Context, defaultLogger *zap.Logger) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
			return l
		}
	}

	if defaultLogger != nil {
		return defaultLogger
	}

	return zap.NewNop()
}

// Metadata holds the basic tracing fields of a request.
type Metadata struct {
	RequestID string
	UserID    string
	CompanyID string
}

func ExtractMetadata(ctx context.Context) Metadata {
	return Metadata{
		RequestID: GetRequestID(ctx),
		UserID:    GetUserID(ctx),
		CompanyID: GetCompanyID(ctx),
	}
}

// Fields renders the metadata as zap fields, skipping empty values.
func (m Metadata) Fields() []zap.Field {
	fields := make([]zap.Field, 0, 3)
	if m.RequestID != "" {
		fields = append(fields, zap.String("request_id", m.RequestID))
	}
	if m.UserID != "" {
		fields = append(fields, zap.String("user_id", m.UserID))
	}
	if m.CompanyID != "" {
		fields = append(fields, zap.String("company_id", m.CompanyID))
	}
	return fields
}
