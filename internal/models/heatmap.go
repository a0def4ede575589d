package models

import "github.com/jengzang/location-heatmap/internal/spatial"

// HeatmapPoint represents a single weighted point in the heatmap
type HeatmapPoint struct {
	Lat       float64 `json:"lat"`       // Latitude of the cell center
	Lng       float64 `json:"lng"`       // Longitude of the cell center
	Intensity float64 `json:"intensity"` // Normalized 0-1
	Value     int     `json:"value"`     // Visits in the cell
	Cell      string  `json:"cell"`      // Geohash of the cell
}

// RenderOptions are the heatmap layer settings echoed back to the client
type RenderOptions struct {
	Radius  int     `json:"radius"`
	Blur    int     `json:"blur"`
	Opacity float64 `json:"opacity"`
}

// MapView describes where the client should center the map
type MapView struct {
	Center spatial.Coordinate `json:"center"`
	Zoom   int                `json:"zoom"`
	Bounds *spatial.Bounds    `json:"bounds,omitempty"`
	// Focus is the centroid of the matched locations
	Focus *spatial.Coordinate `json:"focus,omitempty"`
}

// HeatmapResponse represents the heatmap API response
type HeatmapResponse struct {
	Filter     AppliedFilter        `json:"filter"`
	Locations  []spatial.Coordinate `json:"locations"`
	Points     []HeatmapPoint       `json:"points"`
	Statistics Statistics           `json:"statistics"`
	Render     RenderOptions        `json:"render"`
	Map        MapView              `json:"map"`
}

// AppliedFilter is the normalized filter a response was computed with
type AppliedFilter struct {
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	ConfidenceLevel string `json:"confidence_level,omitempty"`
	SemanticType    string `json:"semantic_type,omitempty"`
	GapPolicy       string `json:"gap_policy"`
}
