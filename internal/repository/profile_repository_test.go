package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/witthaya/prakan/internal/models"
)

func TestProfileRepository_GetProfile_NilForNewUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewProfileRepository(db)
	profile, err := repo.GetProfile(context.Background(), testUserID(t))

	require.NoError(t, err)
	assert.Nil(t, profile)
}

func TestProfileRepository_SaveAndGetRoundtrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewProfileRepository(db)
	ctx := context.Background()
	userID := testUserID(t)
	defer cleanupUser(t, db, userID)

	saved := models.UserProfile{
		Name:         "Somchai",
		BirthDate:    time.Date(1990, time.March, 15, 0, 0, 0, 0, time.UTC),
		AnnualIncome: 720000,
		Deductions: &models.TaxDeductions{
			SocialSecurity:      9000,
			SSF:                 50000,
			ChildAllowanceCount: 2,
			SpouseNoIncome:      true,
			TaxWithheld:         25000,
		},
	}

	require.NoError(t, repo.SaveProfile(ctx, userID, saved))

	loaded, err := repo.GetProfile(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Somchai", loaded.Name)
	assert.Equal(t, float64(720000), loaded.AnnualIncome)
	require.NotNil(t, loaded.Deductions)
	assert.Equal(t, float64(50000), loaded.Deductions.SSF)
	assert.Equal(t, 2, loaded.Deductions.ChildAllowanceCount)
	assert.True(t, loaded.Deductions.SpouseNoIncome)
}

func TestProfileRepository_SaveReplacesProfile(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewProfileRepository(db)
	ctx := context.Background()
	userID := testUserID(t)
	defer cleanupUser(t, db, userID)

	require.NoError(t, repo.SaveProfile(ctx, userID, models.UserProfile{Name: "First", AnnualIncome: 100000}))
	require.NoError(t, repo.SaveProfile(ctx, userID, models.UserProfile{Name: "Second", AnnualIncome: 200000}))

	loaded, err := repo.GetProfile(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Second", loaded.Name)
	assert.Equal(t, float64(200000), loaded.AnnualIncome)
}
