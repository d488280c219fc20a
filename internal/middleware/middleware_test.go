package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-payroll/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", AuthMiddleware(secret), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("company_id")+"/"+c.GetString("employee_id"))
	})

	valid := jwt.MapClaims{
		"user_id":     "u1",
		"company_id":  "c1",
		"employee_id": "e1",
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
	expired := jwt.MapClaims{
		"user_id":     "u1",
		"company_id":  "c1",
		"employee_id": "e1",
		"exp":         time.Now().Add(-time.Hour).Unix(),
	}
	noCompany := jwt.MapClaims{"user_id": "u1", "employee_id": "e1"}

	w := serve(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + signed(t, valid)})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "c1/e1", w.Body.String())

	w = serve(r, http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + signed(t, expired)})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token expired")

	w = serve(r, http.MethodGet, "/me", map[string]string{"Authorization": "Bearer " + signed(t, noCompany)})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "company_id")
}

type fakeRBAC struct {
	allowed bool
	err     error
	got     domain.EnforceRequest
}

func (f *fakeRBAC) Enforce(req domain.EnforceRequest) (bool, error) {
	f.got = req
	return f.allowed, f.err
}

func TestRBACAuthorize(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		rbac   *fakeRBAC
		authed bool
		want   int
	}{
		{"allowed", &fakeRBAC{allowed: true}, true, http.StatusOK},
		{"denied", &fakeRBAC{}, true, http.StatusForbidden},
		{"enforcer failure", &fakeRBAC{err: errors.New("db down")}, true, http.StatusInternalServerError},
		{"no auth context", &fakeRBAC{allowed: true}, false, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/approve", func(c *gin.Context) {
				if tt.authed {
					c.Set("employee_id", "e1")
					c.Set("company_id", "c1")
				}
			}, RBACAuthorize(tt.rbac, "payroll", "approve"), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := serve(r, http.MethodPost, "/approve", nil)

			assert.Equal(t, tt.want, w.Code)
			if tt.authed {
				assert.Equal(t, domain.EnforceRequest{EmployeeID: "e1", CompanyID: "c1", Resource: "payroll", Action: "approve"}, tt.rbac.got)
			}
		})
	}
}

func TestIdempotency(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cacheKey := "idemp:/runs:u1:k1"

	t.Run("replays cached response", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(cacheKey).SetVal(`{"status":201,"data":{"id":"r1"}}`)
		handled := 0

		r := gin.New()
		r.POST("/runs", func(c *gin.Context) { c.Set("user_id", "u1") }, Idempotency(rdb, 0), func(c *gin.Context) {
			handled++
		})

		w := serve(r, http.MethodPost, "/runs", map[string]string{IdempotencyHeader: "k1"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
		assert.JSONEq(t, `{"ok":true,"data":{"id":"r1"}}`, w.Body.String())
		assert.Zero(t, handled)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects concurrent duplicate", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(false)

		r := gin.New()
		r.POST("/runs", func(c *gin.Context) { c.Set("user_id", "u1") }, Idempotency(rdb, 0), func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})

		w := serve(r, http.MethodPost, "/runs", map[string]string{IdempotencyHeader: "k1"})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("first request takes the lock", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", 30*time.Second).SetVal(true)

		var gotCache, gotLock string
		r := gin.New()
		r.POST("/runs", func(c *gin.Context) { c.Set("user_id", "u1") }, Idempotency(rdb, 0), func(c *gin.Context) {
			gotCache = c.GetString("idempotency_cache_key")
			gotLock = c.GetString("idempotency_lock_key")
			c.Status(http.StatusCreated)
		})

		w := serve(r, http.MethodPost, "/runs", map[string]string{IdempotencyHeader: "k1"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, cacheKey, gotCache)
		assert.Equal(t, cacheKey+":lock", gotLock)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lock lives for the configured ttl", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		mock.ExpectGet(cacheKey).RedisNil()
		mock.ExpectSetNX(cacheKey+":lock", "locked", 2*time.Minute).SetVal(true)

		r := gin.New()
		r.POST("/runs", func(c *gin.Context) { c.Set("user_id", "u1") }, Idempotency(rdb, 2*time.Minute), func(c *gin.Context) {
			c.Status(http.StatusCreated)
		})

		w := serve(r, http.MethodPost, "/runs", map[string]string{IdempotencyHeader: "k1"})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSaveIdempotentResult(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectSet("idemp:k", []byte(`{"status":201,"data":{"id":"r1"}}`), 24*time.Hour).SetVal("OK")

	err := SaveIdempotentResult(context.Background(), rdb, "idemp:k", http.StatusCreated, map[string]string{"id": "r1"})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitByUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) { c.Set("user_id", c.GetHeader("X-User")) }, RateLimitByUser(0.001, 2), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", map[string]string{"X-User": "u1"}).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodGet, "/x", map[string]string{"X-User": "u1"}).Code)
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", map[string]string{"X-User": "u2"}).Code)
	// anonymous requests are not limited here
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/x", nil).Code)
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := serve(r, http.MethodGet, "/x", map[string]string{RequestIDHeader: "rid-1"})
	assert.Equal(t, "rid-1", w.Body.String())
	assert.Equal(t, "rid-1", w.Header().Get(RequestIDHeader))

	w = serve(r, http.MethodGet, "/x", nil)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
