package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenTraceLab/pcbgen/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBuildRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("Create", func(t *testing.T) {
		repo := NewBuildRepository(setupTestDB(t))
		b := &Build{Board: "power-supply-test", Source: "power.board", Components: 3, Nets: 3}

		require.NoError(t, repo.Create(ctx, b))
		assert.NotEmpty(t, b.ID)
		assert.False(t, b.CreatedAt.IsZero())
	})

	t.Run("Latest", func(t *testing.T) {
		repo := NewBuildRepository(setupTestDB(t))
		base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		for i, src := range []string{"a.board", "b.board", "c.board"} {
			require.NoError(t, repo.Create(ctx, &Build{
				Board:     "power-supply-test",
				Source:    src,
				Artifacts: []string{"build/power-supply-test.kicad_pcb", "build/power-supply-test.net"},
				Duration:  1500 * time.Millisecond,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}

		latest, err := repo.Latest(ctx, "power-supply-test")
		require.NoError(t, err)
		assert.Equal(t, "c.board", latest.Source)
		assert.Equal(t, []string{"build/power-supply-test.kicad_pcb", "build/power-supply-test.net"}, latest.Artifacts)
		assert.Equal(t, 1500*time.Millisecond, latest.Duration)
		assert.True(t, latest.CreatedAt.Equal(base.Add(2*time.Minute)))
	})

	t.Run("LatestNotFound", func(t *testing.T) {
		repo := NewBuildRepository(setupTestDB(t))
		_, err := repo.Latest(ctx, "nothing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListFiltersAndLimits", func(t *testing.T) {
		repo := NewBuildRepository(setupTestDB(t))
		for _, board := range []string{"alpha", "beta", "alpha", "alpha"} {
			require.NoError(t, repo.Create(ctx, &Build{Board: board, Source: board + ".board"}))
		}

		all, err := repo.List(ctx, "", 0)
		require.NoError(t, err)
		assert.Len(t, all, 4)

		alpha, err := repo.List(ctx, "alpha", 2)
		require.NoError(t, err)
		require.Len(t, alpha, 2)
		for _, b := range alpha {
			assert.Equal(t, "alpha", b.Board)
			assert.Nil(t, b.Artifacts)
		}

		n, err := repo.Count(ctx, "alpha")
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		n, err = repo.Count(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 4, n)
	})

	t.Run("DuplicateID", func(t *testing.T) {
		repo := NewBuildRepository(setupTestDB(t))
		require.NoError(t, repo.Create(ctx, &Build{ID: "fixed", Board: "b", Source: "b.board"}))
		assert.Error(t, repo.Create(ctx, &Build{ID: "fixed", Board: "b", Source: "b.board"}))
	})
}
