package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"quality-control-backend/internal/model"
)

type maintenanceRequest struct {
	MaintenanceType string `json:"maintenance_type" binding:"required"`
	ScheduledDate   string `json:"scheduled_date" binding:"required"`
	Technician      string `json:"technician"`
	ChecklistItems  string `json:"checklist_items"`
	Notes           string `json:"notes"`
}

// PostMaintenance handles POST /api/molds/:mold_id/maintenance.
func (h *Handler) PostMaintenance(c *gin.Context) {
	moldID, err := strconv.ParseInt(c.Param("mold_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mold ID"})
		return
	}

	var req maintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	scheduled, err := parseMeasurementDate(req.ScheduledDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid scheduled_date, use RFC3339 or DD-MM-YYYY"})
		return
	}

	rec := model.MaintenanceRecord{
		MoldID:          moldID,
		MaintenanceType: req.MaintenanceType,
		ScheduledDate:   scheduled,
		Technician:      req.Technician,
		ChecklistItems:  req.ChecklistItems,
		Notes:           req.Notes,
	}
	if err := h.store.ScheduleMaintenance(c.Request.Context(), &rec); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

type completeMaintenanceRequest struct {
	Technician string `json:"technician"`
	Notes      string `json:"notes"`
}

// PostCompleteMaintenance handles POST /api/maintenance/:maintenance_id/complete.
// Completion resets the mold's cycle counter and stamps its last maintenance
// date.
func (h *Handler) PostCompleteMaintenance(c *gin.Context) {
	maintenanceID, err := strconv.ParseInt(c.Param("maintenance_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid maintenance ID"})
		return
	}

	var req completeMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.CompleteMaintenance(c.Request.Context(), maintenanceID, req.Technician, req.Notes, time.Now().UTC()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type reworkRequest struct {
	ReworkType    string  `json:"rework_type" binding:"required"`
	Technician    string  `json:"technician" binding:"required"`
	Description   string  `json:"description"`
	PartsReplaced string  `json:"parts_replaced"`
	Cost          float64 `json:"cost"`
}

// PostRework handles POST /api/molds/:mold_id/rework. Recording a rework
// resets the mold's cycle counter.
func (h *Handler) PostRework(c *gin.Context) {
	moldID, err := strconv.ParseInt(c.Param("mold_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mold ID"})
		return
	}

	var req reworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec := model.ReworkRecord{
		MoldID:        moldID,
		ReworkType:    req.ReworkType,
		ReworkDate:    time.Now().UTC(),
		Technician:    req.Technician,
		Description:   req.Description,
		PartsReplaced: req.PartsReplaced,
		Cost:          req.Cost,
	}
	if err := h.store.AddRework(c.Request.Context(), &rec); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// PostCompleteRework handles POST /api/rework/:rework_id/complete.
func (h *Handler) PostCompleteRework(c *gin.Context) {
	reworkID, err := strconv.ParseInt(c.Param("rework_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rework ID"})
		return
	}

	if err := h.store.CompleteRework(c.Request.Context(), reworkID, time.Now().UTC()); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
