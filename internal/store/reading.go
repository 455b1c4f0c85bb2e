package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"image"
	"time"
)

// Reading is one estimated hand stored in the database.
type Reading struct {
	ID          string
	SkeletonID  int
	Side        string
	Outcome     string
	FingerCount int
	Label       string
	Fingertips  []image.Point
	CreatedAt   time.Time
}

// ReadingRepository stores the reading history.
type ReadingRepository struct {
	db *sql.DB
}

// Readings returns the reading repository for this store.
func (s *Store) Readings() *ReadingRepository {
	return &ReadingRepository{db: s.db}
}

// Create inserts a reading. CreatedAt is set when zero.
func (r *ReadingRepository) Create(rd *Reading) error {
	if rd.CreatedAt.IsZero() {
		rd.CreatedAt = time.Now()
	}

	tips := rd.Fingertips
	if tips == nil {
		tips = []image.Point{}
	}
	data, err := json.Marshal(tips)
	if err != nil {
		return fmt.Errorf("encode fingertips: %w", err)
	}

	_, err = r.db.Exec(
		`INSERT INTO readings (id, skeleton_id, side, outcome, finger_count, label, fingertips, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rd.ID, rd.SkeletonID, rd.Side, rd.Outcome, rd.FingerCount, rd.Label, string(data), rd.CreatedAt,
	)
	return err
}

// List returns the most recent readings, newest first. A non-positive
// limit returns all readings.
func (r *ReadingRepository) List(limit int) ([]*Reading, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, skeleton_id, side, outcome, finger_count, label, fingertips, created_at
		 FROM readings ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var readings []*Reading
	for rows.Next() {
		rd := &Reading{}
		var tips string

		err := rows.Scan(&rd.ID, &rd.SkeletonID, &rd.Side, &rd.Outcome, &rd.FingerCount, &rd.Label, &tips, &rd.CreatedAt)
		if err != nil {
			return nil, err
		}

		if err := json.Unmarshal([]byte(tips), &rd.Fingertips); err != nil {
			return nil, fmt.Errorf("decode fingertips for reading %s: %w", rd.ID, err)
		}
		readings = append(readings, rd)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return readings, nil
}

// CountByLabel returns the number of readings per label. Readings without a
// label are not counted.
func (r *ReadingRepository) CountByLabel() (map[string]int, error) {
	rows, err := r.db.Query(
		`SELECT label, COUNT(*) FROM readings WHERE label != '' GROUP BY label`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		counts[label] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// DeleteBefore removes readings older than t and returns how many were
// removed.
func (r *ReadingRepository) DeleteBefore(t time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM readings WHERE created_at < ?`, t)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
