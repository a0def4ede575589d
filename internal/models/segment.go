package models

// Segment is one entry of a Google Takeout "semanticSegments" timeline.
// A segment may carry a visit, a timeline path, both or neither.
type Segment struct {
	// Timestamps are kept verbatim so that malformed values surface when a
	// query parses them, not when the dataset is decoded.
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`

	Visit        *Visit      `json:"visit,omitempty"`
	TimelinePath []PathPoint `json:"timelinePath,omitempty"`
}

// Visit is the stay payload of a segment.
type Visit struct {
	HierarchyLevel int           `json:"hierarchyLevel"`
	Probability    *float64      `json:"probability,omitempty"` // 0~1
	TopCandidate   *TopCandidate `json:"topCandidate,omitempty"`
}

// TopCandidate is the most likely place inferred for a visit.
type TopCandidate struct {
	PlaceID       string         `json:"placeId,omitempty"`
	SemanticType  string         `json:"semanticType,omitempty"` // INFERRED_HOME, INFERRED_WORK, ...
	Probability   *float64       `json:"probability,omitempty"`
	PlaceLocation *PlaceLocation `json:"placeLocation,omitempty"`
}

// PlaceLocation wraps the degree string of a place, e.g. "41.4039482°, 2.1791428°".
type PlaceLocation struct {
	LatLng string `json:"latLng"`
}

// PathPoint is one vertex of a timeline path.
type PathPoint struct {
	Point string `json:"point"`
	Time  string `json:"time,omitempty"`
}

// Semantic types emitted by Google Timeline
const (
	SemanticTypeHome    = "INFERRED_HOME"
	SemanticTypeWork    = "INFERRED_WORK"
	SemanticTypeOther   = "INFERRED_OTHER"
	SemanticTypeUnknown = "UNKNOWN"
)

// HasVisit reports whether the segment carries a visit payload.
func (s *Segment) HasVisit() bool {
	return s.Visit != nil
}

// HasPath reports whether the segment carries a timeline path payload.
func (s *Segment) HasPath() bool {
	return len(s.TimelinePath) > 0
}

// VisitProbability returns the visit probability, or 0 when absent.
func (s *Segment) VisitProbability() float64 {
	if s.Visit == nil || s.Visit.Probability == nil {
		return 0
	}
	return *s.Visit.Probability
}

// SemanticType returns the semantic type of the visit's top candidate.
func (s *Segment) SemanticType() (string, bool) {
	if s.Visit == nil || s.Visit.TopCandidate == nil || s.Visit.TopCandidate.SemanticType == "" {
		return "", false
	}
	return s.Visit.TopCandidate.SemanticType, true
}

// PlaceLatLng returns the raw degree string of the visited place.
func (s *Segment) PlaceLatLng() (string, bool) {
	if s.Visit == nil || s.Visit.TopCandidate == nil || s.Visit.TopCandidate.PlaceLocation == nil {
		return "", false
	}
	latLng := s.Visit.TopCandidate.PlaceLocation.LatLng
	return latLng, latLng != ""
}
