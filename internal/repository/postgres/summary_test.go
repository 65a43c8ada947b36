package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alpha/internal/domain/summary"
	"alpha/internal/testsupport"
)

func TestSummaryRepository_Upsert(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	repo := NewSummaryRepository(testDB.Tx())
	ctx := context.Background()

	t.Run("inserts a new summary", func(t *testing.T) {
		s := &summary.DailySummary{
			ID:      uuid.New(),
			UserID:  uuid.New(),
			Date:    "2026-03-02",
			Summary: "AI news dominated today.",
		}
		require.NoError(t, s.SetTopArticleIDs([]uuid.UUID{uuid.New(), uuid.New()}))

		err := repo.Upsert(ctx, s)
		require.NoError(t, err)
		assert.NotZero(t, s.GeneratedAt)

		list, err := repo.ListRecent(ctx, s.UserID, 7)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, s.ID, list[0].ID)
		assert.Equal(t, "AI news dominated today.", list[0].Summary)

		ids, err := list[0].GetTopArticleIDs()
		require.NoError(t, err)
		assert.Len(t, ids, 2)
	})

	t.Run("replaces the summary for the same date", func(t *testing.T) {
		userID := uuid.New()

		first := &summary.DailySummary{
			ID:      uuid.New(),
			UserID:  userID,
			Date:    "2026-03-03",
			Summary: "First draft.",
		}
		require.NoError(t, first.SetTopArticleIDs([]uuid.UUID{uuid.New()}))
		require.NoError(t, repo.Upsert(ctx, first))

		topID := uuid.New()
		second := &summary.DailySummary{
			ID:      uuid.New(),
			UserID:  userID,
			Date:    "2026-03-03", // Same date
			Summary: "Regenerated digest.",
		}
		require.NoError(t, second.SetTopArticleIDs([]uuid.UUID{topID}))
		require.NoError(t, repo.Upsert(ctx, second))

		// Still a single row for the date, carrying the replacement
		list, err := repo.ListRecent(ctx, userID, 7)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, first.ID, list[0].ID) // Row identity is kept
		assert.Equal(t, "Regenerated digest.", list[0].Summary)

		ids, err := list[0].GetTopArticleIDs()
		require.NoError(t, err)
		require.Len(t, ids, 1)
		assert.Equal(t, topID, ids[0])
	})

	t.Run("orders recent summaries newest first", func(t *testing.T) {
		userID := uuid.New()
		for _, date := range []string{"2026-03-01", "2026-03-03", "2026-03-02"} {
			s := &summary.DailySummary{
				ID:      uuid.New(),
				UserID:  userID,
				Date:    date,
				Summary: "Digest for " + date,
			}
			require.NoError(t, repo.Upsert(ctx, s))
		}

		list, err := repo.ListRecent(ctx, userID, 2)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "2026-03-03", list[0].Date)
		assert.Equal(t, "2026-03-02", list[1].Date)
	})
}
