package models

// HeatmapFilter represents the parameters of a heatmap query.
// It binds from the query string, a form post or a JSON body.
type HeatmapFilter struct {
	StartDate       string  `form:"startDate" json:"startDate"`             // YYYY-MM-DD, inclusive
	EndDate         string  `form:"endDate" json:"endDate"`                 // YYYY-MM-DD, inclusive
	ConfidenceLevel string  `form:"confidenceLevel" json:"confidenceLevel"` // high, medium, low
	SemanticType    string  `form:"semanticType" json:"semanticType"`       // INFERRED_HOME, INFERRED_WORK, ...
	GapPolicy       string  `form:"gapPolicy" json:"gapPolicy"`             // bridge, break
	Radius          int     `form:"radius" json:"radius"`
	Blur            int     `form:"blur" json:"blur"`
	Opacity         float64 `form:"opacity" json:"opacity"`
}
