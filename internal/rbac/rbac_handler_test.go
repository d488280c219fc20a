package rbac

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	enforceFn func(req EnforceRequest) (bool, error)
}

func (f *fakeService) LoadCompanyPolicy(_ context.Context, _ string) error { return nil }

func (f *fakeService) Enforce(req EnforceRequest) (bool, error) {
	return f.enforceFn(req)
}

func performEnforce(t *testing.T, h *Handler, tokenCompany string, body any) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/rbac/enforce", func(c *gin.Context) {
		if tokenCompany != "" {
			c.Set("company_id", tokenCompany)
		}
	}, h.Enforce)

	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/rbac/enforce", bytes.NewBuffer(payload))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_Enforce(t *testing.T) {
	svc := &fakeService{enforceFn: func(req EnforceRequest) (bool, error) {
		return req.Resource == ResourcePayroll && req.Action == ActionRead, nil
	}}
	h := NewHandler(svc)

	w := performEnforce(t, h, "company-1", EnforceRequest{
		EmployeeID: " emp-1 ",
		CompanyID:  "company-1",
		Resource:   ResourcePayroll,
		Action:     ActionRead,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data EnforceResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Allowed)
}

func TestHandler_Enforce_OtherTenantForbidden(t *testing.T) {
	svc := &fakeService{enforceFn: func(EnforceRequest) (bool, error) {
		t.Fatal("service must not be called")
		return false, nil
	}}

	w := performEnforce(t, NewHandler(svc), "company-1", EnforceRequest{
		EmployeeID: "emp-1",
		CompanyID:  "company-2",
		Resource:   ResourcePayroll,
		Action:     ActionRead,
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandler_Enforce_MissingFields(t *testing.T) {
	svc := &fakeService{}

	w := performEnforce(t, NewHandler(svc), "", map[string]string{"employee_id": "emp-1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
