package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/foodgram-api/internal/apperror"
	"github.com/franciscosanchezn/foodgram-api/internal/models"
	"github.com/franciscosanchezn/foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// respondError translates a service error into the API error envelope
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var details map[string]interface{}
	if field := apperror.FieldOf(err); field != "" {
		details = map[string]interface{}{"field": field}
	}

	switch {
	case errors.Is(err, apperror.ErrValidation):
		c.JSON(http.StatusBadRequest, apiError(models.ErrValidationFailed, err.Error(), details))
	case errors.Is(err, apperror.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, apiError(models.ErrEmptyCart, err.Error(), nil))
	case errors.Is(err, apperror.ErrConflict):
		c.JSON(http.StatusConflict, apiError(models.ErrConflict, err.Error(), nil))
	case errors.Is(err, apperror.ErrNotFound):
		c.JSON(http.StatusNotFound, apiError(models.ErrNotFound, err.Error(), nil))
	case errors.Is(err, apperror.ErrSourceNotFound):
		c.JSON(http.StatusNotFound, apiError(models.ErrSourceNotFound, err.Error(), details))
	case errors.Is(err, apperror.ErrPermission):
		c.JSON(http.StatusForbidden, apiError(models.ErrForbidden, err.Error(), nil))
	default:
		c.JSON(http.StatusInternalServerError, apiError(models.ErrInternalServer, "internal server error", nil))
	}
}

func apiError(code, message string, details map[string]interface{}) models.APIError {
	if details == nil {
		return models.NewAPIError(code, message)
	}
	return models.NewAPIError(code, message, details)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, message))
}

// identityFrom returns the caller resolved by the auth middleware, anonymous when absent
func identityFrom(c *gin.Context) services.Identity {
	return services.Identity{
		UserID: c.GetUint("userID"),
		Role:   c.GetString("userRole"),
	}
}

// parseID reads a positive numeric path parameter
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name+" format")
		return 0, false
	}
	return uint(id), true
}

// queryFlag reads boolean filters sent as 1/0 or true/false
func queryFlag(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}

// queryInt reads a non-negative integer query parameter, 0 when absent
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		badRequest(c, name+" must be a non-negative integer")
		return 0, false
	}
	return n, true
}
