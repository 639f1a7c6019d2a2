package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"wikenfarma-system/internal/database/models"
	"wikenfarma-system/internal/server/middleware"
)

// RecordHandler covers the engine's input stores: orders (standing in for
// the ERP/e-commerce bridges), visits and bonus/malus adjustments.
type RecordHandler struct {
	db *gorm.DB
}

func NewRecordHandler(db *gorm.DB) *RecordHandler {
	return &RecordHandler{db: db}
}

type OrderRequest struct {
	InformatoreID int64     `json:"informatore_id" binding:"required"`
	Source        string    `json:"source" binding:"required,oneof=iqvia wikenship gestline direct_sales"`
	OrderDate     time.Time `json:"order_date" binding:"required"`
	CustomerName  string    `json:"customer_name" binding:"required"`
	CustomerType  string    `json:"customer_type" binding:"required,oneof=private pharmacy"`
	TotalAmount   string    `json:"total_amount" binding:"required"`
	Reference     *string   `json:"reference"`
}

type VisitRequest struct {
	InformatoreID int64     `json:"informatore_id" binding:"required"`
	VisitDate     time.Time `json:"visit_date" binding:"required"`
	DoctorName    string    `json:"doctor_name" binding:"required"`
	Notes         *string   `json:"notes"`
}

type BonusMalusRequest struct {
	InformatoreID int64  `json:"informatore_id" binding:"required"`
	Month         int    `json:"month" binding:"required,min=1,max=12"`
	Year          int    `json:"year" binding:"required"`
	Amount        string `json:"amount" binding:"required"`
	Reason        string `json:"reason" binding:"required"`
}

type RecordListQuery struct {
	InformatoreID *int64 `form:"informatore_id"`
	Month         int    `form:"month"`
	Year          int    `form:"year"`
	Page          int    `form:"page,default=1"`
	PageSize      int    `form:"page_size,default=20"`
}

func periodWindow(month, year int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func (h *RecordHandler) CreateOrder(c *gin.Context) {
	var req OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	orderDate := req.OrderDate
	order := models.Order{
		InformatoreID: req.InformatoreID,
		Source:        req.Source,
		OrderDate:     &orderDate,
		CustomerName:  req.CustomerName,
		CustomerType:  req.CustomerType,
		TotalAmount:   req.TotalAmount,
		Reference:     req.Reference,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create order"))
		return
	}
	c.JSON(http.StatusCreated, successResponse("Order created successfully", order))
}

func (h *RecordHandler) ListOrders(c *gin.Context) {
	var q RecordListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	query := h.db.WithContext(c.Request.Context()).Model(&models.Order{})
	if q.InformatoreID != nil {
		query = query.Where("informatore_id = ?", *q.InformatoreID)
	}
	if q.Month >= 1 && q.Month <= 12 && q.Year > 0 {
		start, end := periodWindow(q.Month, q.Year)
		query = query.Where("order_date >= ? AND order_date < ?", start, end)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to count orders"))
		return
	}

	var orders []models.Order
	err := query.
		Order("order_date desc, id desc").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to retrieve orders"))
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Orders retrieved successfully", orders, PaginationMeta{
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalCount: totalCount,
	}))
}

func (h *RecordHandler) CreateVisit(c *gin.Context) {
	var req VisitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	visitDate := req.VisitDate
	visit := models.Visit{
		InformatoreID: req.InformatoreID,
		VisitDate:     &visitDate,
		DoctorName:    req.DoctorName,
		Notes:         req.Notes,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&visit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create visit"))
		return
	}
	c.JSON(http.StatusCreated, successResponse("Visit recorded successfully", visit))
}

func (h *RecordHandler) ListVisits(c *gin.Context) {
	var q RecordListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	query := h.db.WithContext(c.Request.Context()).Model(&models.Visit{})
	if q.InformatoreID != nil {
		query = query.Where("informatore_id = ?", *q.InformatoreID)
	}
	if q.Month >= 1 && q.Month <= 12 && q.Year > 0 {
		start, end := periodWindow(q.Month, q.Year)
		query = query.Where("visit_date >= ? AND visit_date < ?", start, end)
	}

	var visits []models.Visit
	err := query.
		Order("visit_date desc, id desc").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&visits).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to retrieve visits"))
		return
	}
	c.JSON(http.StatusOK, successResponse("Visits retrieved successfully", visits))
}

func (h *RecordHandler) CreateBonusMalus(c *gin.Context) {
	var req BonusMalusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	adjustment := models.BonusMalus{
		InformatoreID: req.InformatoreID,
		Month:         req.Month,
		Year:          req.Year,
		Amount:        req.Amount,
		Reason:        req.Reason,
		CreatedBy:     c.GetInt64(middleware.CtxUserID),
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&adjustment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to create adjustment"))
		return
	}
	c.JSON(http.StatusCreated, successResponse("Adjustment created successfully; it will be applied on the next calculation", adjustment))
}

func (h *RecordHandler) ListBonusMalus(c *gin.Context) {
	var q RecordListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	query := h.db.WithContext(c.Request.Context()).Model(&models.BonusMalus{})
	if q.InformatoreID != nil {
		query = query.Where("informatore_id = ?", *q.InformatoreID)
	}
	if q.Month >= 1 && q.Month <= 12 && q.Year > 0 {
		query = query.Where("month = ? AND year = ?", q.Month, q.Year)
	}

	var adjustments []models.BonusMalus
	err := query.
		Order("created_at desc").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&adjustments).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to retrieve adjustments"))
		return
	}
	c.JSON(http.StatusOK, successResponse("Adjustments retrieved successfully", adjustments))
}
