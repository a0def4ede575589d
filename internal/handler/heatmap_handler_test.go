package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jengzang/location-heatmap/internal/config"
	"github.com/jengzang/location-heatmap/internal/dataset"
	"github.com/jengzang/location-heatmap/internal/models"
	"github.com/jengzang/location-heatmap/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(t *testing.T, segments []models.Segment) *gin.Engine {
	t.Helper()
	svc, err := service.NewHeatmapService(dataset.FromSegments(segments), config.HeatmapConfig{
		GapPolicy:        "bridge",
		DefaultStartDate: "2013-11-01",
		DefaultEndDate:   "2014-11-30",
		Radius:           8,
		Blur:             12,
		Opacity:          0.7,
		Zoom:             13,
		CellMeters:       20,
	}, zap.NewNop())
	require.NoError(t, err)

	h := NewHeatmapHandler(svc)
	r := gin.New()
	r.POST("/heatmap", h.GetHeatmap)
	r.GET("/heatmap", h.GetHeatmap)
	return r
}

func gappedPath() []models.Segment {
	return []models.Segment{{
		StartTime: "2014-03-01T10:00:00Z",
		EndTime:   "2014-03-01T11:00:00Z",
		TimelinePath: []models.PathPoint{
			{Point: "41.400°, 2.17°"},
			{Point: "41.401°, 2.17°"},
			{Point: "n/a"},
			{Point: "41.402°, 2.17°"},
		},
	}}
}

func postJSON(r http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/heatmap", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func totalDistance(t *testing.T, w *httptest.ResponseRecorder) float64 {
	t.Helper()
	var body struct {
		Data struct {
			Filter struct {
				GapPolicy string `json:"gap_policy"`
			} `json:"filter"`
			Statistics struct {
				TotalDistanceMeters float64 `json:"total_distance_meters"`
			} `json:"statistics"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Data.Statistics.TotalDistanceMeters
}

func TestGetHeatmap_GapPolicy(t *testing.T) {
	r := newEngine(t, gappedPath())
	const step = 111.19492664455873

	w := postJSON(r, `{"startDate": "2014-03-01", "endDate": "2014-03-01"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.InDelta(t, 2*step, totalDistance(t, w), 1e-6)

	w = postJSON(r, `{"startDate": "2014-03-01", "endDate": "2014-03-01", "gapPolicy": "break"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.InDelta(t, step, totalDistance(t, w), 1e-6)
}

func TestGetHeatmap_InvalidInput(t *testing.T) {
	r := newEngine(t, gappedPath())

	tests := []struct {
		name string
		body string
	}{
		{"unknown gap policy", `{"gapPolicy": "teleport"}`},
		{"bad date", `{"startDate": "01/03/2014"}`},
		{"malformed json", `{"startDate": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(r, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), `"code":400`)
		})
	}
}

func TestGetHeatmap_EmptyRangeStillAnswers(t *testing.T) {
	r := newEngine(t, gappedPath())

	req := httptest.NewRequest(http.MethodGet, "/heatmap?startDate=2015-01-01&endDate=2015-01-31", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"locations":[]`)
	assert.Zero(t, totalDistance(t, w))
}
