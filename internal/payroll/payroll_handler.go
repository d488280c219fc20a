package payroll

import (
	"net/http"
	"path/filepath"
	"strconv"

	"go-payroll/internal/middleware"
	"go-payroll/internal/shared/apperror"
	"go-payroll/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Handler struct {
	service Service
	rdb     *redis.Client
	logger  *zap.Logger
}

func NewHandler(service Service, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("payroll.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.handler")
	}
	return &Handler{service: service, logger: l}
}

// NewHandlerWithRedis enables caching of idempotent run creations.
func NewHandlerWithRedis(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	h := NewHandler(service, logger...)
	h.rdb = rdb
	return h
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("payroll request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
		zap.String("message", httpErr.Message),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) BuildEntry(c *gin.Context) {
	var req BuildEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.service.BuildEntry(c.Request.Context(), c.GetString("company_id"), c.GetString("user_id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) ListEntries(c *gin.Context) {
	var filter EntryFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.service.ListEntries(c.Request.Context(), c.GetString("company_id"), filter)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	start, end := response.Paginate(len(resp), page, pageSize)

	meta := response.NewPaginationMeta(int64(len(resp)), page, pageSize)
	response.Success(c, http.StatusOK, resp[start:end], &meta)
}

func (h *Handler) GetEntry(c *gin.Context) {
	resp, err := h.service.GetEntry(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DeleteEntry(c *gin.Context) {
	if err := h.service.DeleteEntry(c.Request.Context(), c.GetString("company_id"), c.Param("id")); err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true}, nil)
}

func (h *Handler) ApproveEntry(c *gin.Context) {
	resp, err := h.service.ApproveEntry(c.Request.Context(), c.GetString("company_id"), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) DownloadPayslip(c *gin.Context) {
	path, err := h.service.PayslipFile(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.FileAttachment(path, "payslip-"+filepath.Base(path))
}

func (h *Handler) CreateRun(c *gin.Context) {
	lockKey, _ := c.Get("idempotency_lock_key")
	cacheKey, _ := c.Get("idempotency_cache_key")

	if h.rdb != nil {
		if lk, ok := lockKey.(string); ok && lk != "" {
			defer h.rdb.Del(c.Request.Context(), lk)
		}
	}

	var req CreateRunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.service.CreateRun(c.Request.Context(), c.GetString("company_id"), c.GetString("user_id"), req)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if h.rdb != nil {
		if ck, ok := cacheKey.(string); ok && ck != "" {
			if err := middleware.SaveIdempotentResult(c.Request.Context(), h.rdb, ck, http.StatusCreated, resp); err != nil {
				h.logger.Warn("store idempotent result failed",
					zap.String("cache_key", ck),
					zap.Error(err),
				)
			}
		}
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ListRuns(c *gin.Context) {
	resp, err := h.service.ListRuns(c.Request.Context(), c.GetString("company_id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetRun(c *gin.Context) {
	resp, err := h.service.GetRun(c.Request.Context(), c.GetString("company_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) RebuildRunEntry(c *gin.Context) {
	var req RebuildRunEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	resp, err := h.service.RebuildRunEntry(
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

func (h *Handler) ApproveRun(c *gin.Context) {
	resp, err := h.service.ApproveRun(c.Request.Context(), c.GetString("company_id"), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
