package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"quality-control-backend/internal/model"
)

// GetMolds handles GET /api/molds.
func (h *Handler) GetMolds(c *gin.Context) {
	statuses, err := h.store.MoldOverview(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// GetMoldDetail handles GET /api/molds/:mold_id.
func (h *Handler) GetMoldDetail(c *gin.Context) {
	moldID, err := strconv.ParseInt(c.Param("mold_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mold ID"})
		return
	}

	detail, err := h.store.MoldDetail(c.Request.Context(), moldID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type thresholdRequest struct {
	Threshold int64 `json:"threshold" binding:"required"`
}

// PutMoldThreshold handles PUT /api/molds/:mold_id/threshold.
func (h *Handler) PutMoldThreshold(c *gin.Context) {
	moldID, err := strconv.ParseInt(c.Param("mold_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mold ID"})
		return
	}

	var req thresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.UpdateThreshold(c.Request.Context(), moldID, req.Threshold); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type problemRequest struct {
	ProblemType string `json:"problem_type" binding:"required"`
	Description string `json:"description"`
	Inspector   string `json:"inspector" binding:"required"`
	Comments    string `json:"comments"`
}

// PostMoldProblem handles POST /api/molds/:mold_id/problems.
func (h *Handler) PostMoldProblem(c *gin.Context) {
	moldID, err := strconv.ParseInt(c.Param("mold_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mold ID"})
		return
	}

	var req problemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	problem := model.MoldProblem{
		MoldID:      moldID,
		ProblemType: req.ProblemType,
		Description: req.Description,
		Inspector:   req.Inspector,
		ReportDate:  time.Now().UTC(),
		Comments:    req.Comments,
	}
	if err := h.store.ReportProblem(c.Request.Context(), &problem); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, problem)
}
