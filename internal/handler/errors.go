package handler

import (
	"errors"
	"net/http"

	"github.com/hypnotizedent/printshop-os-sub002/internal/pricing"
	"github.com/hypnotizedent/printshop-os-sub002/internal/service"
	"github.com/hypnotizedent/printshop-os-sub002/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// writeError maps service and domain errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	var validationErr *pricing.ValidationError
	var marginErr *pricing.MarginViolationError
	var conflictErr *service.ConflictError
	var persistErr *service.PersistenceError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, validationErr.Error()))
	case errors.As(err, &marginErr):
		c.JSON(http.StatusUnprocessableEntity, response.Error(http.StatusUnprocessableEntity, marginErr.Error()))
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, conflictErr.Error()))
	case errors.As(err, &persistErr):
		c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, persistErr.Error()))
	case errors.Is(err, pricing.ErrNoMatchingRule):
		c.JSON(http.StatusUnprocessableEntity, response.Error(http.StatusUnprocessableEntity, err.Error()))
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "not found"))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	}
}
