package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/location-heatmap/internal/database"
	"github.com/jengzang/location-heatmap/internal/models"
)

// SegmentRepository handles database operations for semantic segments
type SegmentRepository struct {
	db *sql.DB
}

// NewSegmentRepository creates a new segment repository
func NewSegmentRepository(db *sql.DB) *SegmentRepository {
	return &SegmentRepository{db: db}
}

// ReplaceAll replaces the stored timeline with segments in a single transaction.
// Values are stored verbatim, including ones that do not parse.
func (r *SegmentRepository) ReplaceAll(ctx context.Context, segments []models.Segment) error {
	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM timeline_path_points"); err != nil {
			return fmt.Errorf("failed to clear path points: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM semantic_segments"); err != nil {
			return fmt.Errorf("failed to clear segments: %w", err)
		}

		segStmt, err := tx.PrepareContext(ctx, `INSERT INTO semantic_segments
			(seq, start_time, end_time, has_visit, hierarchy_level, visit_probability,
			has_top_candidate, place_id, semantic_type, candidate_probability, place_lat_lng)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare segment insert: %w", err)
		}
		defer segStmt.Close()

		pointStmt, err := tx.PrepareContext(ctx, `INSERT INTO timeline_path_points
			(segment_id, idx, point, time) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare path point insert: %w", err)
		}
		defer pointStmt.Close()

		for i := range segments {
			seg := &segments[i]

			var (
				hasVisit, hasCandidate bool
				hierarchyLevel         int
				visitProbability       sql.NullFloat64
				placeID, semanticType  string
				candidateProbability   sql.NullFloat64
				placeLatLng            sql.NullString
			)
			if v := seg.Visit; v != nil {
				hasVisit = true
				hierarchyLevel = v.HierarchyLevel
				visitProbability = nullFloat(v.Probability)
				if c := v.TopCandidate; c != nil {
					hasCandidate = true
					placeID = c.PlaceID
					semanticType = c.SemanticType
					candidateProbability = nullFloat(c.Probability)
					if c.PlaceLocation != nil {
						placeLatLng = sql.NullString{String: c.PlaceLocation.LatLng, Valid: true}
					}
				}
			}

			res, err := segStmt.ExecContext(ctx,
				i, seg.StartTime, seg.EndTime, hasVisit, hierarchyLevel, visitProbability,
				hasCandidate, placeID, semanticType, candidateProbability, placeLatLng,
			)
			if err != nil {
				return fmt.Errorf("failed to insert segment %d: %w", i, err)
			}

			if len(seg.TimelinePath) == 0 {
				continue
			}
			segmentID, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to get id of segment %d: %w", i, err)
			}
			for j, p := range seg.TimelinePath {
				if _, err := pointStmt.ExecContext(ctx, segmentID, j, p.Point, p.Time); err != nil {
					return fmt.Errorf("failed to insert path point %d of segment %d: %w", j, i, err)
				}
			}
		}

		return nil
	})
}

// LoadAll rebuilds the stored timeline in its original order
func (r *SegmentRepository) LoadAll(ctx context.Context) ([]models.Segment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, start_time, end_time, has_visit, hierarchy_level,
		visit_probability, has_top_candidate, place_id, semantic_type, candidate_probability, place_lat_lng
		FROM semantic_segments ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to query segments: %w", err)
	}
	defer rows.Close()

	segments := []models.Segment{}
	byID := make(map[int64]int)

	for rows.Next() {
		var (
			id                     int64
			seg                    models.Segment
			hasVisit, hasCandidate bool
			hierarchyLevel         int
			visitProbability       sql.NullFloat64
			placeID, semanticType  string
			candidateProbability   sql.NullFloat64
			placeLatLng            sql.NullString
		)
		if err := rows.Scan(&id, &seg.StartTime, &seg.EndTime, &hasVisit, &hierarchyLevel,
			&visitProbability, &hasCandidate, &placeID, &semanticType, &candidateProbability, &placeLatLng); err != nil {
			return nil, fmt.Errorf("failed to scan segment: %w", err)
		}

		if hasVisit {
			seg.Visit = &models.Visit{
				HierarchyLevel: hierarchyLevel,
				Probability:    floatPtr(visitProbability),
			}
			if hasCandidate {
				seg.Visit.TopCandidate = &models.TopCandidate{
					PlaceID:      placeID,
					SemanticType: semanticType,
					Probability:  floatPtr(candidateProbability),
				}
				if placeLatLng.Valid {
					seg.Visit.TopCandidate.PlaceLocation = &models.PlaceLocation{LatLng: placeLatLng.String}
				}
			}
		}

		byID[id] = len(segments)
		segments = append(segments, seg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate segments: %w", err)
	}

	pointRows, err := r.db.QueryContext(ctx, `SELECT segment_id, point, time
		FROM timeline_path_points ORDER BY segment_id, idx`)
	if err != nil {
		return nil, fmt.Errorf("failed to query path points: %w", err)
	}
	defer pointRows.Close()

	for pointRows.Next() {
		var segmentID int64
		var p models.PathPoint
		if err := pointRows.Scan(&segmentID, &p.Point, &p.Time); err != nil {
			return nil, fmt.Errorf("failed to scan path point: %w", err)
		}
		i, ok := byID[segmentID]
		if !ok {
			continue
		}
		segments[i].TimelinePath = append(segments[i].TimelinePath, p)
	}
	if err := pointRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate path points: %w", err)
	}

	return segments, nil
}

// Count returns the number of stored segments
func (r *SegmentRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM semantic_segments").Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count segments: %w", err)
	}
	return total, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
