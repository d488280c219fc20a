package rbac

import (
	"net/http"
	"strings"

	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("rbac.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) Enforce(c *gin.Context) {
	var req EnforceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	req.CompanyID = strings.TrimSpace(req.CompanyID)
	req.Resource = strings.TrimSpace(req.Resource)
	req.Action = strings.TrimSpace(req.Action)

	// A caller may only query its own tenant.
	if companyID := c.GetString("company_id"); companyID != "" && companyID != req.CompanyID {
		response.FromError(c, apperror.ErrForbidden)
		return
	}

	allowed, err := h.service.Enforce(req)
	if err != nil {
		h.logger.Error("rbac enforce failed", zap.Error(err))
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, EnforceResponse{Allowed: allowed}, nil)
}
