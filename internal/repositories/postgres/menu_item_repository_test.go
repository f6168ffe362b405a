package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/chrisdamba/menuboard/internal/models"
	"github.com/chrisdamba/menuboard/internal/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ repositories.MenuItemRepository = (*MenuItemRepository)(nil)

func testRepository(t *testing.T) *MenuItemRepository {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	repo := NewMenuItemRepository(pool)
	require.NoError(t, repo.EnsureSchema(context.Background()))
	require.NoError(t, repo.DeleteAll(context.Background()))
	return repo
}

func TestMenuItemRepositoryRoundTrip(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	wings, err := models.NewMenuItem("Wings", 8.5, models.CategoryAppetizers, "hot", []models.DietaryTag{models.TagSpicy}, true)
	require.NoError(t, err)
	require.NoError(t, wings.ApplyRating(4))
	cake, err := models.NewMenuItem("Cake", 6, models.CategoryDesserts, "", nil, false)
	require.NoError(t, err)

	require.NoError(t, repo.BulkCreate(ctx, []*models.MenuItem{wings, cake}))
	tea, err := models.NewMenuItem("Tea", 2, models.CategoryBeverages, "", nil, true)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tea))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, wings, all[0])
	assert.Equal(t, cake, all[1])

	desserts, err := repo.GetByCategory(ctx, models.CategoryDesserts)
	require.NoError(t, err)
	require.Len(t, desserts, 1)
	assert.False(t, desserts[0].IsAvailable)

	require.NoError(t, repo.DeleteAll(ctx))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	repo := testRepository(t)
	ctx := context.Background()

	tea, err := models.NewMenuItem("Tea", 2, models.CategoryBeverages, "", nil, true)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tea))

	err = repo.WithTx(ctx, func(tx repositories.MenuItemRepository) error {
		if err := tx.DeleteAll(ctx); err != nil {
			return err
		}
		return errors.New("copy failed")
	})
	assert.EqualError(t, err, "copy failed")

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	require.NoError(t, repo.WithTx(ctx, func(tx repositories.MenuItemRepository) error {
		return tx.DeleteAll(ctx)
	}))
	count, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
