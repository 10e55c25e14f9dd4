package controllers

import (
	"errors"
	"net/http"

	"backend/services"

	"github.com/gin-gonic/gin"
)

func userIDFromCtx(c *gin.Context) (uint, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	switch id := v.(type) {
	case uint:
		return id, true
	case int:
		return uint(id), true
	case int64:
		return uint(id), true
	default:
		return 0, false
	}
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Estimation failures carry a retry hint; none of them are fatal.
func writeServiceError(c *gin.Context, err error) {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Msg})
		return
	}

	var eErr *services.EstimationError
	if errors.As(err, &eErr) {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     eErr.Error(),
			"kind":      string(eErr.Kind),
			"retryable": true,
		})
		return
	}

	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
