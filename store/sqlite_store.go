package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/viant/descmatch/descriptor"
	"github.com/viant/descmatch/index"
)

// SQLiteStore is a Store backed by a SQLite database opened with
// engine.Open, which registers the vec_l2 function NearestExact relies on.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore ensures the schema exists and returns a store over db.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("store: db is nil")
	}
	if err := EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("store: ensure schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save validates features and inserts them in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, name string, features *descriptor.Features) (string, error) {
	if err := features.Validate(); err != nil {
		return "", fmt.Errorf("store: save %q: %w", name, err)
	}
	id := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO feature_sets(id, name, dim, count, created_at) VALUES(?, ?, ?, ?, ?)`,
		id, name, features.Descriptors.Dim(), features.Len(), time.Now().UnixNano()); err != nil {
		return "", err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO features(set_id, position, x, y, size, angle, descriptor) VALUES(?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()
	for i, kp := range features.Keypoints {
		if _, err := stmt.ExecContext(ctx, id, i, kp.X, kp.Y, kp.Size, kp.Angle, descriptor.Encode(features.Descriptors[i])); err != nil {
			return "", err
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Load returns ErrNotFound for an unknown id.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*descriptor.Features, error) {
	info, err := s.info(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT x, y, size, angle, descriptor FROM features WHERE set_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := &descriptor.Features{
		Keypoints:   make([]descriptor.Keypoint, 0, info.Count),
		Descriptors: make(descriptor.Set, 0, info.Count),
	}
	for rows.Next() {
		var kp descriptor.Keypoint
		var blob []byte
		if err := rows.Scan(&kp.X, &kp.Y, &kp.Size, &kp.Angle, &blob); err != nil {
			return nil, err
		}
		d, err := descriptor.Decode(blob)
		if err != nil {
			return nil, fmt.Errorf("store: load %s: %w", id, err)
		}
		out.Keypoints = append(out.Keypoints, kp)
		out.Descriptors = append(out.Descriptors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// List returns every stored set ordered by creation time.
func (s *SQLiteStore) List(ctx context.Context) ([]SetInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, dim, count, created_at FROM feature_sets ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SetInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes the set and all its features. Deleting an unknown id
// returns ErrNotFound.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM feature_sets WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM features WHERE set_id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// NearestExact scans the whole set in SQL. Ties are broken by position, as
// the in-memory indexes do.
func (s *SQLiteStore) NearestExact(ctx context.Context, id string, query descriptor.Descriptor, k int) ([]index.Neighbor, error) {
	info, err := s.info(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := index.ValidateQuery("store", info.Count, info.Dim, query, k, 1); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT position, vec_l2(descriptor, ?) AS dist
FROM features
WHERE set_id = ?
ORDER BY dist, position
LIMIT ?`, descriptor.Encode(query), id, k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]index.Neighbor, 0, k)
	for rows.Next() {
		var n index.Neighbor
		var dist float64
		if err := rows.Scan(&n.Index, &dist); err != nil {
			return nil, err
		}
		n.Distance = float32(dist)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) info(ctx context.Context, id string) (SetInfo, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, dim, count, created_at FROM feature_sets WHERE id = ?`, id)
	info, err := scanInfo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return SetInfo{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return info, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(row scanner) (SetInfo, error) {
	var info SetInfo
	var created int64
	if err := row.Scan(&info.ID, &info.Name, &info.Dim, &info.Count, &created); err != nil {
		return SetInfo{}, err
	}
	info.CreatedAt = time.Unix(0, created)
	return info, nil
}

var _ Store = (*SQLiteStore)(nil)
