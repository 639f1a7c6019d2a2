package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"wikenfarma-system/internal/commission"
	"wikenfarma-system/internal/server/middleware"
)

type CompensationHandler struct {
	service *commission.Service
}

func NewCompensationHandler(service *commission.Service) *CompensationHandler {
	return &CompensationHandler{service: service}
}

// --- Request & Query Structs for Binding ---

type CalculateRequest struct {
	Month         int    `json:"month" binding:"required"`
	Year          int    `json:"year" binding:"required"`
	InformatoreID *int64 `json:"informatore_id"`
	// Force acknowledges that recalculating an approved period invalidates
	// its approval.
	Force bool `json:"force"`
}

type ListCompensationsQuery struct {
	Month          int    `form:"month" binding:"required"`
	Year           int    `form:"year" binding:"required"`
	InformatoreID  *int64 `form:"informatore_id"`
	EmploymentType string `form:"type" binding:"omitempty,oneof=employee freelancer"`
	Page           int    `form:"page,default=1"`
	PageSize       int    `form:"page_size,default=20"`
}

type PeriodQuery struct {
	Month int `form:"month" binding:"required"`
	Year  int `form:"year" binding:"required"`
}

type ApproveRequest struct {
	Notes string `json:"notes"`
}

type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type CommissionLogsQuery struct {
	Month  int    `form:"month" binding:"required"`
	Year   int    `form:"year" binding:"required"`
	Search string `form:"search"`
}

// --- Admin Handlers ---

// Calculate triggers (re)calculation for one informatore or, when no ID is
// given, for every active informatore in dependency order.
func (h *CompensationHandler) Calculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}
	calculatedBy := c.GetInt64(middleware.CtxUserID)

	if req.InformatoreID != nil {
		comp, err := h.service.CalculatePeriod(c.Request.Context(), *req.InformatoreID, req.Month, req.Year, calculatedBy, req.Force)
		if err != nil {
			handleEngineError(c, err)
			return
		}
		c.JSON(http.StatusOK, successResponse("Compensation calculated successfully", comp))
		return
	}

	batch, err := h.service.CalculateAll(c.Request.Context(), req.Month, req.Year, calculatedBy, req.Force)
	if err != nil {
		handleEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Batch calculation completed", batch))
}

func (h *CompensationHandler) List(c *gin.Context) {
	var q ListCompensationsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	comps, totalCount, err := h.service.List(c.Request.Context(), commission.ListQuery{
		Month:          q.Month,
		Year:           q.Year,
		InformatoreID:  q.InformatoreID,
		EmploymentType: q.EmploymentType,
		Page:           q.Page,
		PageSize:       q.PageSize,
	})
	if err != nil {
		handleEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Compensations retrieved successfully", comps, PaginationMeta{
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalCount: totalCount,
	}))
}

func (h *CompensationHandler) Stats(c *gin.Context) {
	var q PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), q.Month, q.Year)
	if err != nil {
		handleEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Compensation stats retrieved successfully", stats))
}

func (h *CompensationHandler) Approve(c *gin.Context) {
	compID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid compensation ID"))
		return
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	comp, err := h.service.Approve(c.Request.Context(), compID, c.GetInt64(middleware.CtxUserID), req.Notes)
	if err != nil {
		handleEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Compensation approved successfully", comp))
}

func (h *CompensationHandler) Pay(c *gin.Context) {
	compID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid compensation ID"))
		return
	}

	comp, err := h.service.Pay(c.Request.Context(), compID, c.GetInt64(middleware.CtxUserID))
	if err != nil {
		handleEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Compensation marked as paid", comp))
}

func (h *CompensationHandler) Reject(c *gin.Context) {
	compID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid compensation ID"))
		return
	}

	var req RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	comp, err := h.service.Reject(c.Request.Context(), compID, c.GetInt64(middleware.CtxUserID), req.Reason)
	if err != nil {
		handleEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Compensation rejected", comp))
}

// --- Representative Dashboard Handlers (read-only) ---

func (h *CompensationHandler) MyCompensation(c *gin.Context) {
	var q PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	comp, err := h.service.ForInformatore(c.Request.Context(), c.GetInt64(middleware.CtxInformatoreID), q.Month, q.Year)
	if err != nil {
		handleEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Compensation retrieved successfully", comp))
}

func (h *CompensationHandler) MyCommissionLogs(c *gin.Context) {
	var q CommissionLogsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	logs, err := h.service.LogsForInformatore(c.Request.Context(), c.GetInt64(middleware.CtxInformatoreID), q.Month, q.Year, q.Search)
	if err != nil {
		handleEngineError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Commission logs retrieved successfully", logs))
}
