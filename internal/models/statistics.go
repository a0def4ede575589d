package models

import "github.com/jengzang/location-heatmap/internal/stats"

// Statistics represents the aggregates of a heatmap query
type Statistics struct {
	VisitCount          int     `json:"visit_count"`
	TotalDistanceMeters float64 `json:"total_distance_meters"`
	TotalDistanceKm     float64 `json:"total_distance_km"` // Rounded to 2 decimals
	TotalTimeSeconds    float64 `json:"total_time_seconds"`
	TotalTimeHours      float64 `json:"total_time_hours"` // Rounded to 2 decimals
	LocationCount       int     `json:"location_count"`
}

// DatasetSummary describes the loaded timeline
type DatasetSummary struct {
	SegmentCount         int            `json:"segment_count"`
	VisitCount           int            `json:"visit_count"`
	PathCount            int            `json:"path_count"`
	PathPointCount       int            `json:"path_point_count"`
	FirstDate            string         `json:"first_date,omitempty"` // YYYY-MM-DD, UTC
	LastDate             string         `json:"last_date,omitempty"`  // YYYY-MM-DD, UTC
	SemanticTypes        map[string]int `json:"semantic_types"`
	MeanVisitProbability float64        `json:"mean_visit_probability"`
	InvalidTimestamps    int            `json:"invalid_timestamps"`

	SegmentDurationSeconds stats.Description `json:"segment_duration_seconds"`
}
