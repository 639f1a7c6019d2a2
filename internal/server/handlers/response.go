package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"wikenfarma-system/internal/commission"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

func successWithMetaResponse(message string, data interface{}, meta interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta,
	}
}

type PaginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
}

// handleEngineError maps the engine's error taxonomy onto HTTP statuses.
// NotFound stays a plain 404: for the dashboard an uncalculated period is
// the expected case, not a fault.
func handleEngineError(c *gin.Context, err error) {
	var (
		validationErr *commission.ValidationError
		conflictErr   *commission.ConflictError
		stateErr      *commission.StateError
		notFoundErr   *commission.NotFoundError
	)
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, errorResponse(validationErr.Error()))
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, errorResponse(conflictErr.Error()))
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, errorResponse(stateErr.Error()))
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, errorResponse(notFoundErr.Error()))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse("Service error: "+err.Error()))
	}
	c.Abort()
}
