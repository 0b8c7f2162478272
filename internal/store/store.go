// Package store persists the history of successful builds.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/OpenTraceLab/pcbgen/internal/shared"
)

// ErrNotFound is returned when no build matches a query.
var ErrNotFound = errors.New("store: build not found")

// Build is one recorded run of a board definition.
type Build struct {
	ID         string
	Board      string
	Source     string
	Components int
	Nets       int
	Artifacts  []string // paths written by the build
	Duration   time.Duration
	CreatedAt  time.Time
}

// BuildRepository reads and writes the builds table.
type BuildRepository struct {
	db *sql.DB
}

// NewBuildRepository wraps an open database whose migrations have run.
func NewBuildRepository(db *sql.DB) *BuildRepository {
	return &BuildRepository{db: db}
}

// Create records b, assigning its ID and creation time when unset.
func (r *BuildRepository) Create(ctx context.Context, b *Build) error {
	if b.ID == "" {
		b.ID = shared.GenerateID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO builds (id, board, source, components, nets, artifacts, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Board, b.Source, b.Components, b.Nets,
		strings.Join(b.Artifacts, "\n"), b.Duration.Milliseconds(), b.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("store: failed to create build: %w", err)
	}
	return nil
}

// List returns builds newest first. An empty board matches every board;
// limit <= 0 means no limit.
func (r *BuildRepository) List(ctx context.Context, board string, limit int) ([]*Build, error) {
	query := `SELECT id, board, source, components, nets, artifacts, duration_ms, created_at FROM builds`
	var args []any
	if board != "" {
		query += ` WHERE board = ?`
		args = append(args, board)
	}
	query += ` ORDER BY created_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: failed to list builds: %w", err)
	}
	defer rows.Close()

	var builds []*Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: failed to list builds: %w", err)
	}
	return builds, nil
}

// Latest returns the most recent build of board.
func (r *BuildRepository) Latest(ctx context.Context, board string) (*Build, error) {
	builds, err := r.List(ctx, board, 1)
	if err != nil {
		return nil, err
	}
	if len(builds) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, board)
	}
	return builds[0], nil
}

// Count returns the number of recorded builds of board, or of all boards.
func (r *BuildRepository) Count(ctx context.Context, board string) (int, error) {
	query := `SELECT COUNT(*) FROM builds`
	var args []any
	if board != "" {
		query += ` WHERE board = ?`
		args = append(args, board)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: failed to count builds: %w", err)
	}
	return n, nil
}

func scanBuild(rows *sql.Rows) (*Build, error) {
	var (
		b          Build
		artifacts  string
		durationMS int64
	)
	if err := rows.Scan(&b.ID, &b.Board, &b.Source, &b.Components, &b.Nets, &artifacts, &durationMS, &b.CreatedAt); err != nil {
		return nil, fmt.Errorf("store: failed to scan build: %w", err)
	}
	if artifacts != "" {
		b.Artifacts = strings.Split(artifacts, "\n")
	}
	b.Duration = time.Duration(durationMS) * time.Millisecond
	return &b, nil
}
