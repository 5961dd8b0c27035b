package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"quality-control-backend/internal/model"
)

// moldSummaryRow is a mold enriched with its problem count.
type moldSummaryRow struct {
	ID                   int64      `json:"id"`
	Name                 string     `json:"name"`
	Number               string     `json:"number"`
	TotalCycles          int64      `json:"total_cycles"`
	MaintenanceThreshold int64      `json:"maintenance_threshold"`
	LastMaintenanceDate  *time.Time `json:"last_maintenance_date"`
	Status               string     `json:"status"`
	ProductName          string     `json:"product_name"`
	ProblemCount         int64      `json:"problem_count"`
}

// assignmentRow is an active machine-mold assignment for display.
type assignmentRow struct {
	MachineNumber string    `json:"machine_number"`
	MoldID        int64     `json:"mold_id"`
	MoldName      string    `json:"mold_name"`
	MoldNumber    string    `json:"mold_number"`
	ProductName   string    `json:"product_name"`
	AssignedAt    time.Time `json:"assigned_at"`
	AssignedBy    string    `json:"assigned_by"`
}

// activityRow is a recent machine activity entry from the production state.
type activityRow struct {
	MachineNumber string    `json:"machine_number"`
	ProductName   string    `json:"product_name"`
	MoldName      string    `json:"mold_name"`
	MoldNumber    string    `json:"mold_number"`
	LastCount     int       `json:"last_count"`
	LastUpdate    time.Time `json:"last_update"`
}

type dashboardResponse struct {
	Molds          []moldSummaryRow    `json:"molds"`
	Assignments    []assignmentRow     `json:"assignments"`
	RecentActivity []activityRow       `json:"recent_activity"`
	RecentProblems []model.MoldProblem `json:"recent_problems"`
}

// GetMoldsDashboard handles GET /api/dashboard/molds: molds with problem
// counts, active assignments, recent machine activity and recent problems.
func GetMoldsDashboard(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var resp dashboardResponse

		if err := db.Model(&model.Mold{}).
			Select("molds.*, products.name AS product_name, COUNT(mold_problems.id) AS problem_count").
			Joins("JOIN products ON products.id = molds.product_id").
			Joins("LEFT JOIN mold_problems ON mold_problems.mold_id = molds.id").
			Group("molds.id, products.name").
			Order("molds.created_at DESC").
			Scan(&resp.Molds).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to aggregate molds"})
			return
		}

		if err := db.Model(&model.MachineMoldAssignment{}).
			Select("machine_mold_assignments.machine_number, molds.id AS mold_id, molds.name AS mold_name, "+
				"molds.number AS mold_number, products.name AS product_name, "+
				"machine_mold_assignments.assigned_at, machine_mold_assignments.assigned_by").
			Joins("JOIN molds ON molds.id = machine_mold_assignments.mold_id").
			Joins("JOIN products ON products.id = molds.product_id").
			Where("machine_mold_assignments.status = ?", "active").
			Order("machine_mold_assignments.assigned_at DESC").
			Scan(&resp.Assignments).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve assignments"})
			return
		}

		if err := db.Model(&model.MachineProductionState{}).
			Select("machine_production_states.machine_number, products.name AS product_name, "+
				"molds.name AS mold_name, molds.number AS mold_number, "+
				"machine_production_states.last_count, machine_production_states.last_update").
			Joins("JOIN products ON products.id = machine_production_states.last_product_id").
			Joins("LEFT JOIN molds ON molds.product_id = products.id").
			Order("machine_production_states.last_update DESC").
			Limit(10).
			Scan(&resp.RecentActivity).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve machine activity"})
			return
		}

		if err := db.Order("report_date DESC").Limit(5).
			Find(&resp.RecentProblems).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problems"})
			return
		}

		c.JSON(http.StatusOK, resp)
	}
}
