package contextutil_test

import (
	"context"
	"testing"

	"go-payroll/internal/shared/contextutil"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestExtractMetadata(t *testing.T) {
	ctx := context.Background()
	ctx = contextutil.WithRequestID(ctx, "rid-1")
	ctx = contextutil.WithUserID(ctx, "user-1")

	md := contextutil.ExtractMetadata(ctx)

	assert.Equal(t, "rid-1", md.RequestID)
	assert.Equal(t, "user-1", md.UserID)
	assert.Empty(t, md.CompanyID)
	assert.Len(t, md.Fields(), 2)
}

func TestGetLogger_NeverNil(t *testing.T) {
	assert.NotNil(t, contextutil.GetLogger(context.Background(), nil))

	l := zap.NewNop()
	ctx := contextutil.WithLogger(context.Background(), l)
	assert.Same(t, l, contextutil.GetLogger(ctx, nil))
}
