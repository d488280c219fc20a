package paymenttemplate_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-payroll/internal/paymenttemplate"
	paymenttemplateerrors "go-payroll/internal/paymenttemplate/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePaymentTemplateService struct {
	paymenttemplate.Service
	CreateFn func(ctx context.Context, companyID string, req paymenttemplate.CreatePaymentTemplateRequest) (paymenttemplate.PaymentTemplateResponse, error)
	GetAllFn func(ctx context.Context, companyID string) ([]paymenttemplate.PaymentTemplateResponse, error)
	DeleteFn func(ctx context.Context, companyID, id string) error
}

func (f *fakePaymentTemplateService) Create(ctx context.Context, companyID string, req paymenttemplate.CreatePaymentTemplateRequest) (paymenttemplate.PaymentTemplateResponse, error) {
	return f.CreateFn(ctx, companyID, req)
}
func (f *fakePaymentTemplateService) GetAll(ctx context.Context, companyID string) ([]paymenttemplate.PaymentTemplateResponse, error) {
	return f.GetAllFn(ctx, companyID)
}
func (f *fakePaymentTemplateService) Delete(ctx context.Context, companyID, id string) error {
	return f.DeleteFn(ctx, companyID, id)
}

func newTestContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestPaymentTemplateHandler_Create(t *testing.T) {
	companyID := uuid.New().String()
	fieldA, fieldB := uuid.New().String(), uuid.New().String()

	t.Run("success keeps field order", func(t *testing.T) {
		svc := &fakePaymentTemplateService{
			CreateFn: func(_ context.Context, cid string, req paymenttemplate.CreatePaymentTemplateRequest) (paymenttemplate.PaymentTemplateResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, []string{fieldA, fieldB}, req.PaymentFields)
				return paymenttemplate.PaymentTemplateResponse{ID: uuid.New().String(), Name: req.Name}, nil
			},
		}
		h := paymenttemplate.NewHandler(svc)

		c, w := newTestContext(http.MethodPost, "/api/v1/payment-templates",
			`{"name":"Staff","payment_field_ids":["`+fieldA+`","`+fieldB+`"]}`)
		c.Set("company_id", companyID)

		h.Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "Staff")
	})

	t.Run("no fields", func(t *testing.T) {
		h := paymenttemplate.NewHandler(&fakePaymentTemplateService{})

		c, w := newTestContext(http.MethodPost, "/api/v1/payment-templates", `{"name":"Staff","payment_field_ids":[]}`)
		c.Set("company_id", companyID)

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate field", func(t *testing.T) {
		svc := &fakePaymentTemplateService{
			CreateFn: func(context.Context, string, paymenttemplate.CreatePaymentTemplateRequest) (paymenttemplate.PaymentTemplateResponse, error) {
				return paymenttemplate.PaymentTemplateResponse{}, paymenttemplateerrors.ErrDuplicateField
			},
		}
		h := paymenttemplate.NewHandler(svc)

		c, w := newTestContext(http.MethodPost, "/api/v1/payment-templates",
			`{"name":"Staff","payment_field_ids":["`+fieldA+`","`+fieldA+`"]}`)
		c.Set("company_id", companyID)

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPaymentTemplateHandler_GetAll(t *testing.T) {
	svc := &fakePaymentTemplateService{
		GetAllFn: func(context.Context, string) ([]paymenttemplate.PaymentTemplateResponse, error) {
			return []paymenttemplate.PaymentTemplateResponse{{Name: "Staff"}, {Name: "Contract"}}, nil
		},
	}
	h := paymenttemplate.NewHandler(svc)

	c, w := newTestContext(http.MethodGet, "/api/v1/payment-templates", "")
	c.Set("company_id", uuid.New().String())

	h.GetAll(c)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Ok   bool                                      `json:"ok"`
		Data []paymenttemplate.PaymentTemplateResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Ok)
	assert.Len(t, body.Data, 2)
}

func TestPaymentTemplateHandler_DeleteReferenced(t *testing.T) {
	svc := &fakePaymentTemplateService{
		DeleteFn: func(context.Context, string, string) error {
			return paymenttemplateerrors.ErrTemplateAssigned
		},
	}
	h := paymenttemplate.NewHandler(svc)

	c, w := newTestContext(http.MethodDelete, "/api/v1/payment-templates/x", "")
	c.Set("company_id", uuid.New().String())
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

	h.Delete(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "REFERENCED")
}
