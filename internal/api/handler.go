package api

import (
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"quality-control-backend/internal/processor"
	"quality-control-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	processor *processor.Service
	webpush   *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, p *processor.Service, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:     s,
		processor: p,
		webpush:   webpushOptions,
	}
}

// respondError translates pipeline errors into HTTP responses.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch processor.Classify(err) {
	case processor.KindValidation:
		status = http.StatusBadRequest
	case processor.KindDuplicate:
		status = http.StatusConflict
	case processor.KindNotFound:
		status = http.StatusNotFound
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
