package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"wikenfarma-system/internal/database/models"
	"wikenfarma-system/internal/utils"
)

const tokenTTL = 12 * time.Hour

type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username      string `json:"username" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=8"`
	Firstname     string `json:"firstname" binding:"required"`
	Lastname      string `json:"lastname" binding:"required"`
	UserType      string `json:"user_type" binding:"required,oneof=admin informatore"`
	InformatoreID *int64 `json:"informatore_id"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	UserType  string    `json:"user_type"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	var user models.User
	err := h.db.WithContext(c.Request.Context()).
		Where("username = ? AND is_active = ?", req.Username, true).
		First(&user).Error
	if err != nil {
		c.JSON(http.StatusUnauthorized, errorResponse("Invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, errorResponse("Invalid credentials"))
		return
	}

	token, exp, err := utils.GenerateToken(user.ID, user.Username, user.UserType, user.InformatoreID, tokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to issue token"))
		return
	}

	now := time.Now()
	h.db.WithContext(c.Request.Context()).Model(&user).Update("last_login", &now)

	c.JSON(http.StatusOK, successResponse("Login successful", loginResponse{
		Token:     token,
		ExpiresAt: exp,
		UserType:  user.UserType,
	}))
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format: "+err.Error()))
		return
	}

	if req.UserType == models.UserTypeInformatore && req.InformatoreID == nil {
		c.JSON(http.StatusBadRequest, errorResponse("Informatore accounts must reference an informatore profile"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse("Failed to hash password"))
		return
	}

	user := models.User{
		Username:      req.Username,
		Email:         req.Email,
		Password:      string(hash),
		Firstname:     req.Firstname,
		Lastname:      req.Lastname,
		UserType:      req.UserType,
		InformatoreID: req.InformatoreID,
		IsActive:      true,
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		c.JSON(http.StatusConflict, errorResponse("Username or email already registered"))
		return
	}

	user.Password = ""
	c.JSON(http.StatusCreated, successResponse("User registered successfully", user))
}
