package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/testutil"
)

func TestPropertyRepository_CRUD(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPropertyRepository(db)
	ctx := context.Background()

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	property := testutil.NewTestProperty()
	property.LayoutGrid = []models.RoomPosition{{RoomID: 1, X: 0, Y: 0, W: 2, H: 2}}
	require.NoError(t, repo.Create(ctx, property))

	got, err := repo.GetDefault(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ocean Whisper Lodge", got.Name)
	assert.Equal(t, 12, got.LastRefNumber)
	require.Len(t, got.LayoutGrid, 1)
	assert.Equal(t, 2, got.LayoutGrid[0].W)

	got.Name = "Ocean Whisper Lodge & Spa"
	require.NoError(t, repo.Update(ctx, got))

	reloaded, err := repo.GetByID(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ocean Whisper Lodge & Spa", reloaded.Name)
}

func TestPropertyRepository_CompareAndSetRefNumber(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewPropertyRepository(db)
	ctx := context.Background()

	property := testutil.NewTestProperty()
	require.NoError(t, repo.Create(ctx, property))

	ok, err := repo.CompareAndSetRefNumber(ctx, property.ID, 12, 13)
	require.NoError(t, err)
	assert.True(t, ok)

	t.Run("过期的期望值失败", func(t *testing.T) {
		ok, err := repo.CompareAndSetRefNumber(ctx, property.ID, 12, 13)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	got, err := repo.GetByID(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, 13, got.LastRefNumber)
}

func TestSeasonalRateRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	propertyRepo := NewPropertyRepository(db)
	repo := NewSeasonalRateRepository(db)
	ctx := context.Background()

	property := testutil.NewTestProperty()
	require.NoError(t, propertyRepo.Create(ctx, property))

	maxSort, err := repo.MaxSort(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, -1, maxSort)

	peak := &models.SeasonalRate{
		PropertyID: property.ID, Name: "Peak Summer",
		StartDate: models.MustParseDate("2024-12-01"), EndDate: models.MustParseDate("2025-01-31"),
		Multiplier: 1.4, Sort: 1,
	}
	easter := &models.SeasonalRate{
		PropertyID: property.ID, Name: "Easter Special",
		StartDate: models.MustParseDate("2024-04-10"), EndDate: models.MustParseDate("2024-04-20"),
		Multiplier: 1.25, Sort: 0,
	}
	require.NoError(t, repo.Create(ctx, peak))
	require.NoError(t, repo.Create(ctx, easter))

	rates, err := repo.ListByProperty(ctx, property.ID)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, "Easter Special", rates[0].Name)
	assert.Equal(t, "2025-01-31", rates[1].EndDate.String())

	maxSort, err = repo.MaxSort(ctx, property.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, maxSort)

	require.NoError(t, repo.UpdateSort(ctx, easter.ID, 5))
	withRates, err := propertyRepo.GetByIDWithRates(ctx, property.ID)
	require.NoError(t, err)
	require.Len(t, withRates.SeasonalRates, 2)
	assert.Equal(t, "Peak Summer", withRates.SeasonalRates[0].Name)

	require.NoError(t, repo.Delete(ctx, peak.ID))
	rates, err = repo.ListByProperty(ctx, property.ID)
	require.NoError(t, err)
	assert.Len(t, rates, 1)
}
