package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"quality-control-backend/internal/store"
)

type submissionRequest struct {
	ProductID       int64                    `json:"product_id" binding:"required"`
	MachineNumber   string                   `json:"machine_number" binding:"required"`
	Count           int                      `json:"count" binding:"required"`
	MeasurementDate string                   `json:"measurement_date"`
	Inspector       string                   `json:"inspector" binding:"required"`
	Shift           string                   `json:"shift"`
	SubmissionID    string                   `json:"submission_id"`
	Readings        []store.DimensionReading `json:"readings" binding:"required"`
}

// PostMeasurements handles POST /api/measurements: one submission batch.
func (h *Handler) PostMeasurements(c *gin.Context) {
	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	measuredAt, err := parseMeasurementDate(req.MeasurementDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid measurement_date, use RFC3339 or DD-MM-YYYY"})
		return
	}

	result, err := h.processor.Process(c.Request.Context(), store.Submission{
		ProductID:     req.ProductID,
		MachineNumber: req.MachineNumber,
		Count:         req.Count,
		MeasuredAt:    measuredAt,
		Inspector:     req.Inspector,
		Shift:         req.Shift,
		SubmissionID:  req.SubmissionID,
		Readings:      req.Readings,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// parseMeasurementDate accepts RFC3339 timestamps or the legacy DD-MM-YYYY
// form, in which case the current clock time is attached. An empty string
// defers to the store's own timestamping.
func parseMeasurementDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, nil
	}
	day, err := time.Parse("02-01-2006", raw)
	if err != nil {
		return time.Time{}, err
	}
	now := time.Now().UTC()
	return time.Date(day.Year(), day.Month(), day.Day(),
		now.Hour(), now.Minute(), now.Second(), 0, time.UTC), nil
}

// GetRecentMeasurements handles GET /api/measurements/recent.
func (h *Handler) GetRecentMeasurements(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	reports, err := h.store.RecentMeasurements(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}
