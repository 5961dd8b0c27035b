package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"quality-control-backend/config"
	qdb "quality-control-backend/internal/db"
	"quality-control-backend/internal/model"
	"quality-control-backend/internal/processor"
	"quality-control-backend/internal/store"
)

// newTestRouter builds the full API over an isolated in-memory database.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, qdb.Migrate(db))

	cfg := &config.ServerConfig{
		RateLimitPerSec: 100,
		RateLimitBurst:  100,
		CacheTTLSeconds: 1,
	}
	s := store.NewGormStore(db, config.QualityConfig{
		DuplicateWindow:  5 * time.Minute,
		DueSoonMargin:    5000,
		DefaultThreshold: 50000,
	})
	p := processor.NewService(s, nil)
	return NewRouter(cfg, s, p, &webpush.Options{})
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTestProduct(t *testing.T, r *gin.Engine, name string) (model.Product, model.Dimension) {
	t.Helper()

	w := doJSON(t, r, http.MethodPost, "/api/products", gin.H{
		"name":           name,
		"drawing_number": "DWG-" + name,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var product model.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &product))

	w = doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/products/%d/dimensions", product.ID), gin.H{
		"name":            "length",
		"nominal_value":   10.0,
		"tolerance_minus": 0.2,
		"tolerance_plus":  0.3,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var dimension model.Dimension
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dimension))

	return product, dimension
}

func TestPostMeasurements(t *testing.T) {
	r := newTestRouter(t)
	product, dimension := createTestProduct(t, r, "bracket")

	payload := gin.H{
		"product_id":       product.ID,
		"machine_number":   "M-01",
		"count":            500,
		"measurement_date": time.Now().UTC().Format(time.RFC3339),
		"inspector":        "maria",
		"shift":            "day",
		"submission_id":    "batch-001",
		"readings": []gin.H{
			{"dimension_id": dimension.ID, "measured_value": 10.1},
		},
	}

	w := doJSON(t, r, http.MethodPost, "/api/measurements", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var result store.SubmissionResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "batch-001", result.SubmissionID)
	assert.Equal(t, 1, result.Persisted)

	// Replaying the same submission id must be rejected without persisting.
	w = doJSON(t, r, http.MethodPost, "/api/measurements", payload)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestPostMeasurementsValidation(t *testing.T) {
	r := newTestRouter(t)
	product, dimension := createTestProduct(t, r, "bracket")

	testCases := []struct {
		name     string
		payload  gin.H
		wantCode int
	}{
		{
			"missing machine_number",
			gin.H{
				"product_id": product.ID,
				"count":      10,
				"inspector":  "maria",
				"readings":   []gin.H{{"dimension_id": dimension.ID, "measured_value": 10.0}},
			},
			http.StatusBadRequest,
		},
		{
			"bad measurement_date",
			gin.H{
				"product_id":       product.ID,
				"machine_number":   "M-01",
				"count":            10,
				"measurement_date": "yesterday",
				"inspector":        "maria",
				"readings":         []gin.H{{"dimension_id": dimension.ID, "measured_value": 10.0}},
			},
			http.StatusBadRequest,
		},
		{
			"unknown product",
			gin.H{
				"product_id":     int64(9999),
				"machine_number": "M-01",
				"count":          10,
				"inspector":      "maria",
				"readings":       []gin.H{{"dimension_id": dimension.ID, "measured_value": 10.0}},
			},
			http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/measurements", tc.payload)
			assert.Equal(t, tc.wantCode, w.Code, w.Body.String())
		})
	}
}

func TestGetRecentMeasurements(t *testing.T) {
	r := newTestRouter(t)
	product, dimension := createTestProduct(t, r, "bracket")

	for i, value := range []float64{10.1, 10.35} {
		w := doJSON(t, r, http.MethodPost, "/api/measurements", gin.H{
			"product_id":     product.ID,
			"machine_number": "M-01",
			"count":          100,
			"measurement_date": time.Now().UTC().
				Add(time.Duration(i) * time.Hour).Format(time.RFC3339),
			"inspector": "maria",
			"readings":  []gin.H{{"dimension_id": dimension.ID, "measured_value": value}},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := doJSON(t, r, http.MethodGet, "/api/measurements/recent?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var reports []store.MeasurementReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reports))
	require.Len(t, reports, 2)

	// Newest first: the out-of-tolerance reading was measured later.
	assert.Equal(t, 10.35, reports[0].MeasuredValue)
	assert.False(t, reports[0].InTolerance)
	assert.Equal(t, 10.1, reports[1].MeasuredValue)
	assert.True(t, reports[1].InTolerance)
}

func TestGetMolds(t *testing.T) {
	r := newTestRouter(t)
	product, _ := createTestProduct(t, r, "bracket")

	w := doJSON(t, r, http.MethodGet, "/api/molds", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var molds []store.MoldStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &molds))
	require.Len(t, molds, 1)
	assert.Equal(t, product.ID, molds[0].ProductID)
	assert.Equal(t, store.HealthOK, molds[0].Health)
	assert.Equal(t, int64(50000), molds[0].CyclesRemaining)
}

func TestPutMoldThreshold(t *testing.T) {
	r := newTestRouter(t)
	createTestProduct(t, r, "bracket")

	w := doJSON(t, r, http.MethodGet, "/api/molds", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var molds []store.MoldStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &molds))
	require.Len(t, molds, 1)
	moldID := molds[0].ID

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/molds/%d/threshold", moldID), gin.H{"threshold": 60000})
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/molds/%d/threshold", moldID), gin.H{"threshold": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = doJSON(t, r, http.MethodPut, "/api/molds/9999/threshold", gin.H{"threshold": 60000})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}
