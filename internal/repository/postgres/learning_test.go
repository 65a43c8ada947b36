package postgres

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alpha/internal/domain/learning"
	"alpha/internal/testsupport"
	"alpha/pkg/errors"
)

func TestLearningRepository_Create(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	repo := NewLearningRepository(testDB.Tx())
	ctx := context.Background()

	t.Run("creates lesson successfully", func(t *testing.T) {
		c := &learning.Content{
			ID:          uuid.New(),
			UserID:      uuid.New(),
			Date:        "2026-03-02",
			Topic:       "Index funds",
			Category:    learning.CategoryUSStocks,
			Explanation: "An index fund tracks a market index.",
			CaseStudy:   "S&P 500 over thirty years.",
			NextTopic:   "Expense ratios",
		}
		require.NoError(t, c.SetKeyPoints([]string{"diversification", "low fees"}))

		err := repo.Create(ctx, c)
		require.NoError(t, err)
		assert.NotZero(t, c.CreatedAt)

		retrieved, err := repo.GetByUserAndDate(ctx, c.UserID, c.Date)
		require.NoError(t, err)
		assert.Equal(t, c.ID, retrieved.ID)
		assert.Equal(t, "Index funds", retrieved.Topic)
		assert.False(t, retrieved.IsCompleted)

		points, err := retrieved.GetKeyPoints()
		require.NoError(t, err)
		assert.Equal(t, []string{"diversification", "low fees"}, points)
	})

	t.Run("maps same-day duplicate to already exists", func(t *testing.T) {
		userID := uuid.New()

		first := &learning.Content{
			ID:       uuid.New(),
			UserID:   userID,
			Date:     "2026-03-03",
			Topic:    "Original topic",
			Category: learning.CategoryWeb3,
		}
		require.NoError(t, repo.Create(ctx, first))

		second := &learning.Content{
			ID:       uuid.New(),
			UserID:   userID,
			Date:     "2026-03-03", // Same date
			Topic:    "Competing topic",
			Category: learning.CategoryWeb3,
		}
		err := repo.Create(ctx, second)
		assert.ErrorIs(t, err, errors.ErrAlreadyExists)

		// The first lesson survives untouched
		retrieved, err := repo.GetByUserAndDate(ctx, userID, "2026-03-03")
		require.NoError(t, err)
		assert.Equal(t, first.ID, retrieved.ID)
		assert.Equal(t, "Original topic", retrieved.Topic)
	})

	t.Run("returns not found for missing date", func(t *testing.T) {
		_, err := repo.GetByUserAndDate(ctx, uuid.New(), "2026-03-04")
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})
}

func TestLearningRepository_MarkCompleted(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	testDB := testsupport.NewTestPostgres(t)
	defer testDB.Close()

	repo := NewLearningRepository(testDB.Tx())
	ctx := context.Background()

	t.Run("marks lesson completed", func(t *testing.T) {
		c := &learning.Content{
			ID:       uuid.New(),
			UserID:   uuid.New(),
			Date:     "2026-03-05",
			Topic:    "Dollar cost averaging",
			Category: learning.CategoryQuantitative,
		}
		require.NoError(t, repo.Create(ctx, c))

		err := repo.MarkCompleted(ctx, c.ID)
		require.NoError(t, err)

		retrieved, err := repo.GetByUserAndDate(ctx, c.UserID, c.Date)
		require.NoError(t, err)
		assert.True(t, retrieved.IsCompleted)
		require.NotNil(t, retrieved.CompletedAt)
	})

	t.Run("returns not found for unknown lesson", func(t *testing.T) {
		err := repo.MarkCompleted(ctx, uuid.New())
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})
}
