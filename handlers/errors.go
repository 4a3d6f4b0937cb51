package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ssovee/Open-Data-API/auth"
	"github.com/ssovee/Open-Data-API/database"
	"github.com/ssovee/Open-Data-API/objectstore"
	"github.com/ssovee/Open-Data-API/providers"
)

// StatusFor maps a domain error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, database.ErrNotFound),
		errors.Is(err, objectstore.ErrNotFound),
		errors.Is(err, providers.ErrUnknownCurrency),
		errors.Is(err, providers.ErrUnknownCity):
		return http.StatusNotFound
	case errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, objectstore.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, providers.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
