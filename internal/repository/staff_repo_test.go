package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/innflow-backend/internal/models"
	"github.com/dumeirei/innflow-backend/internal/testutil"
)

func TestStaffRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewStaffRepository(db)
	ctx := context.Background()

	staff := &models.Staff{
		PropertyID:   1,
		Name:         "John Doe",
		Email:        "john@oceanwhisper.com",
		PasswordHash: "hash",
		Role:         models.RoleStaff,
		Access:       []string{"Bookings", "Calendar"},
		Status:       models.StaffStatusActive,
	}
	require.NoError(t, repo.Create(ctx, staff))

	exists, err := repo.ExistsByEmail(ctx, "john@oceanwhisper.com")
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := repo.GetByEmail(ctx, "john@oceanwhisper.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bookings", "Calendar"}, []string(got.Access))

	require.NoError(t, repo.UpdateLastLogin(ctx, staff.ID, "127.0.0.1"))
	got, err = repo.GetByID(ctx, staff.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLoginAt)
	assert.Equal(t, "127.0.0.1", got.LastLoginIP)

	list, err := repo.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, repo.Delete(ctx, staff.ID))
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTenantRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewTenantRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Tenant{
		Name: "Ocean Whisper Lodge", Domain: "oceanwhisper.innflow.com",
		Plan: models.TenantPlanEnterprise, Status: models.TenantStatusActive, Users: 12,
	}))
	trial := &models.Tenant{
		Name: "Mountain Retreat B&B", Domain: "mountain.innflow.com",
		Plan: models.TenantPlanStarter, Status: models.TenantStatusTrialing, Users: 3,
	}
	require.NoError(t, repo.Create(ctx, trial))

	list, total, err := repo.List(ctx, 0, 10, models.TenantStatusTrialing)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "Mountain Retreat B&B", list[0].Name)

	trial.Status = models.TenantStatusSuspended
	require.NoError(t, repo.Update(ctx, trial))
	got, err := repo.GetByID(ctx, trial.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TenantStatusSuspended, got.Status)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestCashUpRepository(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewCashUpRepository(db)
	ctx := context.Background()

	older := &models.CashUp{PropertyID: 1, Date: models.MustParseDate("2024-05-01"), Cash: 500, Card: 300, EFT: 200, Total: 1000, ReconciledBy: "Sarah Miller"}
	newer := &models.CashUp{PropertyID: 1, Date: models.MustParseDate("2024-05-02"), Cash: 100, Total: 100, ReconciledBy: "Sarah Miller"}
	require.NoError(t, repo.Create(ctx, older))
	require.NoError(t, repo.Create(ctx, newer))

	list, total, err := repo.List(ctx, 1, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "2024-05-02", list[0].Date.String())

	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.InDelta(t, 200, got.EFT, 0.001)
}
