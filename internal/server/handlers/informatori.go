package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"wikenfarma-system/internal/database/models"
)

type InformatoreHandler struct {
	db *gorm.DB
}

func NewInformatoreHandler(db *gorm.DB) *InformatoreHandler {
	return &InformatoreHandler{db: db}
}

type InformatoreRequest struct {
	FirstName        string     `json:"first_name" binding:"required"`
	LastName         string     `json:"last_name" binding:"required"`
	Email            string     `json:"email" binding:"required,email"`
	Phone            string     `json:"phone"`
	EmploymentType   string     `json:"employment_type" binding:"required,oneof=employee freelancer"`
	Role             string     `json:"role" binding:"required,oneof=informatore capo_area"`
	Area             string     `json:"area"`
	CapoAreaID       *int64     `json:"capo_area_id"`
	FixedSalary      string     `json:"fixed_salary" binding:"required"`
	CommissionRate   *string    `json:"commission_rate"`
	CutOffAmount     *string    `json:"cut_off_amount"`
	TeamOverrideRate *string    `json:"team_override_rate"`
	HireDate         *time.Time `json:"hire_date"`
}

type ListInformatoriQuery struct {
	Area            string `form:"area"`
	EmploymentType  string `form:"type" binding:"omitempty,oneof=employee freelancer"`
	IncludeInactive bool   `form:"include_inactive"`
	Page            int    `form:"page,default=1"`
	PageSize        int    `form:"page_size,default=20"`
}

func (h *InformatoreHandler) Create(c *gin.Context) {
	var req InformatoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	inf := models.Informatore{
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Email:            req.Email,
		Phone:            req.Phone,
		EmploymentType:   req.EmploymentType,
		Role:             req.Role,
		Area:             req.Area,
		CapoAreaID:       req.CapoAreaID,
		FixedSalary:      req.FixedSalary,
		CommissionRate:   req.CommissionRate,
		CutOffAmount:     req.CutOffAmount,
		TeamOverrideRate: req.TeamOverrideRate,
		HireDate:         req.HireDate,
		IsActive:         true,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&inf).Error; err != nil {
		c.JSON(http.StatusConflict, errorResponse("Failed to create informatore: "+err.Error()))
		return
	}
	c.JSON(http.StatusCreated, successResponse("Informatore created successfully", inf))
}

func (h *InformatoreHandler) List(c *gin.Context) {
	var q ListInformatoriQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}

	query := h.db.WithContext(c.Request.Context()).Model(&models.Informatore{})
	if !q.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if q.Area != "" {
		query = query.Where("area = ?", q.Area)
	}
	if q.EmploymentType != "" {
		query = query.Where("employment_type = ?", q.EmploymentType)
	}

	var totalCount int64
	if err := query.Count(&totalCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to count informatori"))
		return
	}

	var informatori []models.Informatore
	err := query.
		Order("last_name asc, first_name asc").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&informatori).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to retrieve informatori"))
		return
	}

	c.JSON(http.StatusOK, successWithMetaResponse("Informatori retrieved successfully", informatori, PaginationMeta{
		Page:       q.Page,
		PageSize:   q.PageSize,
		TotalCount: totalCount,
	}))
}

func (h *InformatoreHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid informatore ID"))
		return
	}

	var inf models.Informatore
	if err := h.db.WithContext(c.Request.Context()).Preload("Subordinates").First(&inf, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse("Informatore not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to retrieve informatore"))
		return
	}
	c.JSON(http.StatusOK, successResponse("Informatore retrieved successfully", inf))
}

func (h *InformatoreHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid informatore ID"))
		return
	}

	var req InformatoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	var inf models.Informatore
	if err := h.db.WithContext(c.Request.Context()).First(&inf, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, errorResponse("Informatore not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to retrieve informatore"))
		return
	}

	updates := map[string]interface{}{
		"FirstName":        req.FirstName,
		"LastName":         req.LastName,
		"Email":            req.Email,
		"Phone":            req.Phone,
		"EmploymentType":   req.EmploymentType,
		"Role":             req.Role,
		"Area":             req.Area,
		"CapoAreaID":       req.CapoAreaID,
		"FixedSalary":      req.FixedSalary,
		"CommissionRate":   req.CommissionRate,
		"CutOffAmount":     req.CutOffAmount,
		"TeamOverrideRate": req.TeamOverrideRate,
		"HireDate":         req.HireDate,
	}
	if err := h.db.WithContext(c.Request.Context()).Model(&inf).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to update informatore"))
		return
	}

	c.JSON(http.StatusOK, successResponse("Informatore updated successfully", inf))
}

// Deactivate soft-disables a profile. Profiles referenced by orders or
// compensations are never deleted; history must stay reconstructable.
func (h *InformatoreHandler) Deactivate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid informatore ID"))
		return
	}

	result := h.db.WithContext(c.Request.Context()).Model(&models.Informatore{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to deactivate informatore"))
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, errorResponse("Informatore not found"))
		return
	}
	c.JSON(http.StatusOK, successResponse("Informatore deactivated successfully", nil))
}
