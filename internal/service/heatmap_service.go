package service

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/location-heatmap/internal/analysis"
	"github.com/jengzang/location-heatmap/internal/config"
	"github.com/jengzang/location-heatmap/internal/dataset"
	"github.com/jengzang/location-heatmap/internal/models"
	"github.com/jengzang/location-heatmap/internal/spatial"
	"github.com/jengzang/location-heatmap/internal/stats"
)

const dateLayout = "2006-01-02"

// ErrInvalidFilter marks filter parameters that cannot be turned into a query
var ErrInvalidFilter = errors.New("invalid filter")

// HeatmapService answers heatmap queries against a loaded timeline
type HeatmapService struct {
	dataset   *dataset.Dataset
	cfg       config.HeatmapConfig
	gapPolicy analysis.GapPolicy
	logger    *zap.Logger
}

// NewHeatmapService creates a new heatmap service
func NewHeatmapService(ds *dataset.Dataset, cfg config.HeatmapConfig, logger *zap.Logger) (*HeatmapService, error) {
	policy, err := analysis.ParseGapPolicy(cfg.GapPolicy)
	if err != nil {
		return nil, err
	}
	return &HeatmapService{
		dataset:   ds,
		cfg:       cfg,
		gapPolicy: policy,
		logger:    logger.Named("heatmap"),
	}, nil
}

// FilterOptions lists the values a client can offer in its filter form
type FilterOptions struct {
	SemanticTypes    []string              `json:"semantic_types"`
	ConfidenceLevels []ConfidenceLevelInfo `json:"confidence_levels"`
	GapPolicies      []string              `json:"gap_policies"`
	Defaults         models.AppliedFilter  `json:"defaults"`
	Render           models.RenderOptions  `json:"render"`
}

// ConfidenceLevelInfo describes one confidence key
type ConfidenceLevelInfo struct {
	Key   analysis.ConfidenceLevel  `json:"key"`
	Range analysis.ProbabilityRange `json:"range"`
}

// Summary returns the dataset summary
func (s *HeatmapService) Summary() models.DatasetSummary {
	return s.dataset.Summary()
}

// FilterOptions returns the values and defaults for the filter form
func (s *HeatmapService) FilterOptions() FilterOptions {
	levels := make([]ConfidenceLevelInfo, 0, 3)
	for _, level := range analysis.ConfidenceLevels() {
		r, _ := level.Range()
		levels = append(levels, ConfidenceLevelInfo{Key: level, Range: r})
	}

	start, end := s.defaultDates()
	return FilterOptions{
		SemanticTypes:    s.dataset.SemanticTypes(),
		ConfidenceLevels: levels,
		GapPolicies:      []string{analysis.GapBridge.String(), analysis.GapBreak.String()},
		Defaults: models.AppliedFilter{
			StartDate: start,
			EndDate:   end,
			GapPolicy: s.gapPolicy.String(),
		},
		Render: s.renderOptions(models.HeatmapFilter{}),
	}
}

// BuildQuery validates filter and fills in defaults
func (s *HeatmapService) BuildQuery(filter models.HeatmapFilter) (analysis.Query, models.AppliedFilter, error) {
	defaultStart, defaultEnd := s.defaultDates()
	applied := models.AppliedFilter{
		StartDate:       orDefault(filter.StartDate, defaultStart),
		EndDate:         orDefault(filter.EndDate, defaultEnd),
		ConfidenceLevel: filter.ConfidenceLevel,
		SemanticType:    filter.SemanticType,
	}

	startDate, err := time.Parse(dateLayout, applied.StartDate)
	if err != nil {
		return analysis.Query{}, applied, fmt.Errorf("%w: startDate %q is not YYYY-MM-DD", ErrInvalidFilter, applied.StartDate)
	}
	endDate, err := time.Parse(dateLayout, applied.EndDate)
	if err != nil {
		return analysis.Query{}, applied, fmt.Errorf("%w: endDate %q is not YYYY-MM-DD", ErrInvalidFilter, applied.EndDate)
	}
	if endDate.Before(startDate) {
		return analysis.Query{}, applied, fmt.Errorf("%w: endDate %s is before startDate %s", ErrInvalidFilter, applied.EndDate, applied.StartDate)
	}

	policy := s.gapPolicy
	if filter.GapPolicy != "" {
		policy, err = analysis.ParseGapPolicy(filter.GapPolicy)
		if err != nil {
			return analysis.Query{}, applied, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
	}
	applied.GapPolicy = policy.String()

	confidence := analysis.ConfidenceLevel(filter.ConfidenceLevel)
	if confidence != "" && !confidence.Known() {
		s.logger.Debug("ignoring unknown confidence level", zap.String("confidence_level", filter.ConfidenceLevel))
	}

	return analysis.Query{
		StartDate:    startDate,
		EndDate:      endDate,
		Confidence:   confidence,
		SemanticType: filter.SemanticType,
		GapPolicy:    policy,
	}, applied, nil
}

// Heatmap runs a filter query and shapes the result for the map and statistics panel
func (s *HeatmapService) Heatmap(filter models.HeatmapFilter) (*models.HeatmapResponse, error) {
	q, applied, err := s.BuildQuery(filter)
	if err != nil {
		return nil, err
	}

	result, err := analysis.FilterSegments(s.dataset.Segments(), q)
	if err != nil {
		var tsErr *analysis.TimestampError
		if errors.As(err, &tsErr) {
			s.logger.Error("malformed timestamp in dataset",
				zap.Int("segment", tsErr.Index),
				zap.String("field", tsErr.Field),
				zap.String("value", tsErr.Value),
				zap.Error(tsErr.Err),
			)
		}
		return nil, err
	}

	s.logger.Debug("heatmap query",
		zap.String("start_date", applied.StartDate),
		zap.String("end_date", applied.EndDate),
		zap.String("confidence_level", applied.ConfidenceLevel),
		zap.String("semantic_type", applied.SemanticType),
		zap.Int("visit_count", result.VisitCount),
		zap.Int("locations", len(result.Locations)),
	)

	resp := &models.HeatmapResponse{
		Filter:    applied,
		Locations: result.Locations,
		Points:    s.weightedPoints(result.Locations),
		Statistics: models.Statistics{
			VisitCount:          result.VisitCount,
			TotalDistanceMeters: result.TotalDistance,
			TotalDistanceKm:     stats.Round(result.TotalDistance/1000, 2),
			TotalTimeSeconds:    result.TotalTime.Seconds(),
			TotalTimeHours:      stats.Round(result.TotalTime.Hours(), 2),
			LocationCount:       len(result.Locations),
		},
		Render: s.renderOptions(filter),
		Map: models.MapView{
			Center: spatial.Coordinate{Lat: s.cfg.CenterLat, Lng: s.cfg.CenterLng},
			Zoom:   s.cfg.Zoom,
		},
	}
	if bounds, ok := spatial.BoundingBox(result.Locations); ok {
		focus := spatial.Centroid(result.Locations)
		resp.Map.Bounds = &bounds
		resp.Map.Focus = &focus
	}

	return resp, nil
}

// weightedPoints buckets locations into geohash cells sized by CellMeters
func (s *HeatmapService) weightedPoints(locations []spatial.Coordinate) []models.HeatmapPoint {
	if len(locations) == 0 {
		return []models.HeatmapPoint{}
	}

	precision := spatial.CellPrecisionFor(s.cfg.CellMeters)
	counts := make(map[spatial.Cell]int)
	maxCount := 0
	for _, loc := range locations {
		cell := spatial.CellAt(loc, precision)
		counts[cell]++
		if counts[cell] > maxCount {
			maxCount = counts[cell]
		}
	}

	points := make([]models.HeatmapPoint, 0, len(counts))
	for cell, n := range counts {
		center := cell.Center()
		points = append(points, models.HeatmapPoint{
			Lat:       center.Lat,
			Lng:       center.Lng,
			Intensity: float64(n) / float64(maxCount),
			Value:     n,
			Cell:      string(cell),
		})
	}

	sort.Slice(points, func(i, j int) bool {
		if points[i].Value != points[j].Value {
			return points[i].Value > points[j].Value
		}
		return points[i].Cell < points[j].Cell
	})

	return points
}

func (s *HeatmapService) renderOptions(filter models.HeatmapFilter) models.RenderOptions {
	opts := models.RenderOptions{
		Radius:  s.cfg.Radius,
		Blur:    s.cfg.Blur,
		Opacity: s.cfg.Opacity,
	}
	if filter.Radius > 0 {
		opts.Radius = filter.Radius
	}
	if filter.Blur > 0 {
		opts.Blur = filter.Blur
	}
	if filter.Opacity > 0 {
		opts.Opacity = filter.Opacity
	}
	return opts
}

// defaultDates spans the loaded timeline, or the configured range when the
// timeline has no parseable dates
func (s *HeatmapService) defaultDates() (string, string) {
	summary := s.dataset.Summary()
	start := orDefault(summary.FirstDate, s.cfg.DefaultStartDate)
	end := orDefault(summary.LastDate, s.cfg.DefaultEndDate)
	return start, end
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
