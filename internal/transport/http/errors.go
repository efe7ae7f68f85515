package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/blockfall/backend/internal/domain"
)

// respondError maps domain errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	var domainErr domain.Error
	if errors.As(err, &domainErr) {
		switch domainErr {
		case domain.ErrMatchNotFound:
			status = http.StatusNotFound
		case domain.ErrAIControlled, domain.ErrGameOver:
			status = http.StatusConflict
		default:
			status = http.StatusBadRequest
		}
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	c.JSON(status, gin.H{"error": message})
}
