package analysis

import (
	"fmt"
	"strings"
	"time"

	"github.com/jengzang/location-heatmap/internal/models"
	"github.com/jengzang/location-heatmap/internal/spatial"
)

// GapPolicy decides how path distance is summed around unparseable points
type GapPolicy int

const (
	// GapBridge pairs each resolved point with the next resolved point,
	// so distance is summed across a dropped vertex.
	GapBridge GapPolicy = iota
	// GapBreak only pairs points at adjacent array positions; a dropped
	// vertex contributes no distance on either side.
	GapBreak
)

func (p GapPolicy) String() string {
	switch p {
	case GapBridge:
		return "bridge"
	case GapBreak:
		return "break"
	default:
		return fmt.Sprintf("GapPolicy(%d)", int(p))
	}
}

// ParseGapPolicy parses "bridge" or "break" (case-insensitive)
func ParseGapPolicy(s string) (GapPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bridge":
		return GapBridge, nil
	case "break":
		return GapBreak, nil
	default:
		return GapBridge, fmt.Errorf("unknown gap policy %q", s)
	}
}

// Query holds the filter parameters of one aggregation.
// Only the calendar dates of StartDate and EndDate are used, both inclusive.
type Query struct {
	StartDate    time.Time
	EndDate      time.Time
	Confidence   ConfidenceLevel // empty or unknown: no confidence filtering
	SemanticType string          // empty: no semantic type filtering
	GapPolicy    GapPolicy
}

// Result is the aggregate of all segments matching a Query
type Result struct {
	Locations     []spatial.Coordinate // one per matching visit with a resolvable place
	VisitCount    int                  // matching segments
	TotalDistance float64              // meters, over matching paths
	TotalTime     time.Duration        // sum of end - start over matching segments
}

// FilterSegments applies q to segments and aggregates the matches.
// segments is only read. A malformed timestamp anywhere in the dataset
// fails the query with a *TimestampError and no partial result.
func FilterSegments(segments []models.Segment, q Query) (*Result, error) {
	fromDate := civilDate(q.StartDate)
	toDate := civilDate(q.EndDate)
	probRange, filterConfidence := q.Confidence.Range()

	result := &Result{Locations: []spatial.Coordinate{}}

	for i := range segments {
		seg := &segments[i]

		start, err := ParseTimestamp(seg.StartTime)
		if err != nil {
			return nil, &TimestampError{Index: i, Field: "startTime", Value: seg.StartTime, Err: err}
		}
		end, err := ParseTimestamp(seg.EndTime)
		if err != nil {
			return nil, &TimestampError{Index: i, Field: "endTime", Value: seg.EndTime, Err: err}
		}

		// containment, not overlap
		if civilDate(start) < fromDate || civilDate(end) > toDate {
			continue
		}

		if filterConfidence && seg.HasVisit() && !probRange.Contains(seg.VisitProbability()) {
			continue
		}

		if q.SemanticType != "" {
			semanticType, ok := seg.SemanticType()
			if !ok || semanticType != q.SemanticType {
				continue
			}
		}

		if latLng, ok := seg.PlaceLatLng(); ok {
			if loc, ok := spatial.ParseLatLng(latLng); ok {
				result.Locations = append(result.Locations, loc)
			}
		}

		if seg.HasPath() {
			result.TotalDistance += PathDistance(seg.TimelinePath, q.GapPolicy)
		}

		result.VisitCount++
		result.TotalTime += end.Sub(start)
	}

	return result, nil
}

// PathDistance sums the distance in meters along a timeline path,
// skipping vertices whose point cannot be parsed.
func PathDistance(path []models.PathPoint, policy GapPolicy) float64 {
	if policy == GapBreak {
		var total float64
		var prev spatial.Coordinate
		prevOK := false
		for _, vertex := range path {
			cur, ok := spatial.ParseLatLng(vertex.Point)
			if ok && prevOK {
				total += spatial.Distance(prev, cur)
			}
			prev, prevOK = cur, ok
		}
		return total
	}

	resolved := make([]spatial.Coordinate, 0, len(path))
	for _, vertex := range path {
		if c, ok := spatial.ParseLatLng(vertex.Point); ok {
			resolved = append(resolved, c)
		}
	}
	return spatial.PathLength(resolved)
}
