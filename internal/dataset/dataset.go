// Package dataset loads a Google Takeout location history timeline into an
// immutable in-memory handle that queries are run against.
package dataset

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/goccy/go-json"

	"github.com/jengzang/location-heatmap/internal/analysis"
	"github.com/jengzang/location-heatmap/internal/models"
	"github.com/jengzang/location-heatmap/internal/stats"
)

// Dataset is a loaded timeline. It is never mutated after construction and
// may be shared by concurrent queries.
type Dataset struct {
	segments []models.Segment
	summary  models.DatasetSummary
}

type takeoutDocument struct {
	SemanticSegments []models.Segment `json:"semanticSegments"`
}

// Load decodes a Takeout timeline document. Both the {"semanticSegments": [...]}
// export and a bare array of segments are accepted.
func Load(r io.Reader) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("failed to decode dataset: empty document")
	}

	var segments []models.Segment
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &segments); err != nil {
			return nil, fmt.Errorf("failed to decode segment array: %w", err)
		}
	} else {
		var doc takeoutDocument
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode timeline document: %w", err)
		}
		segments = doc.SemanticSegments
	}

	return FromSegments(segments), nil
}

// LoadFile loads a Takeout timeline from path
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return Load(f)
}

// FromSegments wraps segments in a Dataset. The caller must not modify
// segments afterwards.
func FromSegments(segments []models.Segment) *Dataset {
	if segments == nil {
		segments = []models.Segment{}
	}
	return &Dataset{
		segments: segments,
		summary:  summarize(segments),
	}
}

// Segments returns the timeline. The slice is shared and must be treated as read-only.
func (d *Dataset) Segments() []models.Segment {
	return d.segments
}

// Len returns the number of segments
func (d *Dataset) Len() int {
	return len(d.segments)
}

// Summary returns counts and bounds of the timeline
func (d *Dataset) Summary() models.DatasetSummary {
	s := d.summary
	s.SemanticTypes = make(map[string]int, len(d.summary.SemanticTypes))
	for k, v := range d.summary.SemanticTypes {
		s.SemanticTypes[k] = v
	}
	return s
}

// SemanticTypes returns the distinct visit semantic types, sorted
func (d *Dataset) SemanticTypes() []string {
	types := make([]string, 0, len(d.summary.SemanticTypes))
	for t := range d.summary.SemanticTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func summarize(segments []models.Segment) models.DatasetSummary {
	summary := models.DatasetSummary{
		SegmentCount:  len(segments),
		SemanticTypes: make(map[string]int),
	}

	var probabilities, durations []float64
	var first, last string

	for i := range segments {
		seg := &segments[i]

		if seg.HasVisit() {
			summary.VisitCount++
			probabilities = append(probabilities, seg.VisitProbability())
			if t, ok := seg.SemanticType(); ok {
				summary.SemanticTypes[t]++
			}
		}
		if seg.HasPath() {
			summary.PathCount++
			summary.PathPointCount += len(seg.TimelinePath)
		}

		start, err := analysis.ParseTimestamp(seg.StartTime)
		if err != nil {
			summary.InvalidTimestamps++
			continue
		}
		end, err := analysis.ParseTimestamp(seg.EndTime)
		if err != nil {
			summary.InvalidTimestamps++
			continue
		}

		durations = append(durations, end.Sub(start).Seconds())

		startDate := start.Format("2006-01-02")
		endDate := end.Format("2006-01-02")
		if first == "" || startDate < first {
			first = startDate
		}
		if last == "" || endDate > last {
			last = endDate
		}
	}

	summary.FirstDate = first
	summary.LastDate = last
	summary.MeanVisitProbability = stats.Mean(probabilities)
	summary.SegmentDurationSeconds = stats.Describe(durations)

	return summary
}
