package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jengzang/location-heatmap/internal/auth"
	"github.com/jengzang/location-heatmap/internal/config"
	"github.com/jengzang/location-heatmap/internal/dataset"
	"github.com/jengzang/location-heatmap/internal/handler"
	"github.com/jengzang/location-heatmap/internal/middleware"
	"github.com/jengzang/location-heatmap/internal/service"
)

const timeline = `{"semanticSegments": [
  {
    "startTime": "2014-01-01T08:00:00.000+01:00",
    "endTime": "2014-01-01T18:00:00.000+01:00",
    "visit": {
      "probability": 0.9,
      "topCandidate": {
        "semanticType": "INFERRED_HOME",
        "placeLocation": {"latLng": "41.40°, 2.17°"}
      }
    }
  },
  {
    "startTime": "2014-01-02T09:00:00Z",
    "endTime": "2014-01-02T10:00:00Z",
    "timelinePath": [
      {"point": "41.400°, 2.17°"},
      {"point": "41.401°, 2.17°"},
      {"point": "garbage"}
    ]
  }
]}`

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{AllowedOrigins: []string{"*"}},
		Heatmap: config.HeatmapConfig{
			GapPolicy:        "bridge",
			DefaultStartDate: "2013-11-01",
			DefaultEndDate:   "2014-11-30",
			Radius:           8,
			Blur:             12,
			Opacity:          0.7,
			CenterLat:        41.4039482,
			CenterLng:        2.1791428,
			Zoom:             13,
			CellMeters:       20,
		},
	}
}

func newRouter(t *testing.T, cfg *config.Config, doc string, limiter *middleware.RateLimiter) *gin.Engine {
	t.Helper()
	ds, err := dataset.Load(strings.NewReader(doc))
	require.NoError(t, err)
	svc, err := service.NewHeatmapService(ds, cfg.Heatmap, zap.NewNop())
	require.NoError(t, err)

	return SetupRouter(cfg, Dependencies{
		Heatmap:     handler.NewHeatmapHandler(svc),
		RateLimiter: limiter,
		Logger:      zap.NewNop(),
		Build:       BuildInfo{Version: "test"},
	})
}

func do(r http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestHealth(t *testing.T) {
	r := newRouter(t, testConfig(), timeline, nil)
	w, _ := do(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"version":"test"`)
}

func TestHeatmapQuery(t *testing.T) {
	r := newRouter(t, testConfig(), timeline, nil)

	q := url.Values{}
	q.Set("startDate", "2014-01-01")
	q.Set("endDate", "2014-01-31")
	q.Set("confidenceLevel", "high")
	q.Set("semanticType", "INFERRED_HOME")

	w, env := do(r, httptest.NewRequest(http.MethodGet, "/api/v1/heatmap?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Locations  [][2]float64 `json:"locations"`
		Statistics struct {
			VisitCount       int     `json:"visit_count"`
			TotalTimeSeconds float64 `json:"total_time_seconds"`
		} `json:"statistics"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.Statistics.VisitCount)
	assert.Equal(t, [][2]float64{{41.40, 2.17}}, data.Locations)
	assert.Equal(t, 36000.0, data.Statistics.TotalTimeSeconds)

	q.Set("confidenceLevel", "low")
	w, env = do(r, httptest.NewRequest(http.MethodGet, "/api/v1/heatmap?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 0, data.Statistics.VisitCount)
	assert.Empty(t, data.Locations)
}

func TestHeatmapFormPost(t *testing.T) {
	r := newRouter(t, testConfig(), timeline, nil)

	form := url.Values{}
	form.Set("startDate", "2014-01-02")
	form.Set("endDate", "2014-01-02")
	form.Set("radius", "15")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/heatmap", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w, env := do(r, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		Statistics struct {
			VisitCount          int     `json:"visit_count"`
			TotalDistanceMeters float64 `json:"total_distance_meters"`
		} `json:"statistics"`
		Render struct {
			Radius int `json:"radius"`
			Blur   int `json:"blur"`
		} `json:"render"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.Statistics.VisitCount)
	assert.InDelta(t, 111.19492664455873, data.Statistics.TotalDistanceMeters, 1e-6)
	assert.Equal(t, 15, data.Render.Radius)
	assert.Equal(t, 12, data.Render.Blur)
}

func TestHeatmapBadRequest(t *testing.T) {
	r := newRouter(t, testConfig(), timeline, nil)

	for _, target := range []string{
		"/api/v1/heatmap?startDate=yesterday",
		"/api/v1/heatmap?startDate=2014-02-01&endDate=2014-01-01",
		"/api/v1/heatmap?radius=wide",
	} {
		w, env := do(r, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.Equal(t, http.StatusBadRequest, env.Code)
		assert.NotEmpty(t, env.Error)
	}
}

func TestHeatmapMalformedTimestamp(t *testing.T) {
	doc := `{"semanticSegments": [{"startTime": "2014-01-01T08:00:00Z", "endTime": "soon"}]}`
	r := newRouter(t, testConfig(), doc, nil)

	w, env := do(r, httptest.NewRequest(http.MethodGet, "/api/v1/heatmap?startDate=2014-01-01&endDate=2014-01-31", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, env.Error, `segment 0: invalid endTime "soon"`)
	assert.Empty(t, env.Data)
}

func TestDatasetAndFilters(t *testing.T) {
	r := newRouter(t, testConfig(), timeline, nil)

	w, env := do(r, httptest.NewRequest(http.MethodGet, "/api/v1/dataset", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var summary struct {
		SegmentCount int    `json:"segment_count"`
		FirstDate    string `json:"first_date"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &summary))
	assert.Equal(t, 2, summary.SegmentCount)
	assert.Equal(t, "2014-01-01", summary.FirstDate)

	w, env = do(r, httptest.NewRequest(http.MethodGet, "/api/v1/filters", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var opts struct {
		SemanticTypes []string `json:"semantic_types"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &opts))
	assert.Equal(t, []string{"INFERRED_HOME"}, opts.SemanticTypes)
}

func TestAuthEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = "s3cret"
	r := newRouter(t, cfg, timeline, nil)

	w, _ := do(r, httptest.NewRequest(http.MethodGet, "/api/v1/dataset", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := auth.IssueToken("s3cret", "me", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dataset", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w, _ = do(r, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// health stays public
	w, _ = do(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimited(t *testing.T) {
	r := newRouter(t, testConfig(), timeline, middleware.NewRateLimiter(0.001, 1, time.Minute))

	w, _ := do(r, httptest.NewRequest(http.MethodGet, "/api/v1/filters", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = do(r, httptest.NewRequest(http.MethodGet, "/api/v1/filters", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
