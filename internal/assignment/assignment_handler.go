package assignment

import (
	"net/http"
	"strconv"
	"time"

	assignmenterrors "go-payroll/internal/assignment/errors"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/dateutil"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("assignment.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("assignment.handler")
	}
	return &Handler{service: service, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("assignment request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), c.GetString("company_id"), c.GetString("user_id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) GetAll(c *gin.Context) {
	var filter ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.service.GetAll(c.Request.Context(), c.GetString("company_id"), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetById(c *gin.Context) {
	resp, err := h.service.GetByID(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) History(c *gin.Context) {
	resp, err := h.service.History(
		c.Request.Context(),
		c.GetString("company_id"),
		c.Query("subject_type"),
		c.Query("subject_id"),
	)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	var req UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.service.Update(
		c.Request.Context(),
		c.GetString("company_id"),
		c.GetString("user_id"),
		c.Param("id"),
		req,
	)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Delete(c *gin.Context) {
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	err := h.service.Delete(
		c.Request.Context(),
		c.GetString("company_id"),
		c.GetString("user_id"),
		c.Param("id"),
		force,
	)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true, "forced": force}, nil)
}

// Resolve answers which template applies to a subject on a date. Finding
// nothing is a valid answer and still returns 200.
func (h *Handler) Resolve(c *gin.Context) {
	var q ResolveQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BindError(c, err)
		return
	}

	asOf := dateutil.Today()
	if q.AsOf != "" {
		t, err := dateutil.Parse(q.AsOf)
		if err != nil {
			h.writeServiceError(c, assignmenterrors.ErrInvalidDate)
			return
		}
		asOf = t
	}

	res, err := h.service.Resolve(c.Request.Context(), c.GetString("company_id"), q.SubjectType, q.SubjectID, asOf)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, toResolveResponse(asOf, res), nil)
}

func toResolveResponse(asOf time.Time, res *Resolution) ResolveResponse {
	out := ResolveResponse{AsOf: dateutil.Format(asOf)}
	if res == nil {
		return out
	}
	a := mapToResponse(res.Assignment)
	out.Found = true
	out.Source = res.Source
	out.Assignment = &a
	return out
}
