package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/witthaya/prakan/internal/config"
	"github.com/witthaya/prakan/internal/database"
	"github.com/witthaya/prakan/internal/models"
)

// setupTestDB connects to a local PostgreSQL and ensures the schema exists.
// These are integration tests; run with -short to skip them.
func setupTestDB(t *testing.T) *database.Database {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	cfg := config.DatabaseConfig{
		Host:     getEnvOrDefault("DB_HOST", "host.docker.internal"),
		Port:     getEnvOrDefault("DB_PORT", "5432"),
		Name:     getEnvOrDefault("DB_NAME", "prakan"),
		User:     getEnvOrDefault("DB_USER", "postgres"),
		Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
		PoolMin:  2,
		PoolMax:  5,
	}

	ctx := context.Background()
	db, err := database.NewPostgresPool(ctx, cfg)
	require.NoError(t, err, "Failed to connect to test database")
	require.NoError(t, db.EnsureSchema(ctx), "Failed to ensure schema")

	return db
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// testUserID returns a unique user ID so parallel test runs never collide.
func testUserID(t *testing.T) string {
	t.Helper()
	return "test-" + uuid.New().String()
}

func cleanupUser(t *testing.T, db *database.Database, userID string) {
	t.Helper()
	ctx := context.Background()
	if _, err := db.Pool.Exec(ctx, "DELETE FROM user_policies WHERE user_id = $1", userID); err != nil {
		t.Logf("Warning: failed to clean up user policies: %v", err)
	}
	if _, err := db.Pool.Exec(ctx, "DELETE FROM user_profiles WHERE user_id = $1", userID); err != nil {
		t.Logf("Warning: failed to clean up user profile: %v", err)
	}
}

func TestPolicyRepository_GetPolicies_EmptyForNewUser(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewPolicyRepository(db)
	policies, err := repo.GetPolicies(context.Background(), testUserID(t))

	require.NoError(t, err)
	assert.NotNil(t, policies)
	assert.Empty(t, policies)
}

func TestPolicyRepository_SaveAndGetRoundtrip(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewPolicyRepository(db)
	ctx := context.Background()
	userID := testUserID(t)
	defer cleanupUser(t, db, userID)

	saved := []models.Policy{
		{
			ID:               "pol-1",
			Company:          "AIA",
			PlanName:         "Health Happy",
			Premium:          1500,
			PaymentFrequency: models.PayMonthly,
			DueDate:          time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
			Coverages: []models.PolicyCoverage{
				{Type: models.CoverageHealth, SumAssured: 500000, RoomRate: 4000},
			},
			Documents: []models.PolicyDocument{
				{ID: "doc-1", Name: "policy.pdf", Category: "contract"},
			},
		},
	}

	require.NoError(t, repo.SavePolicies(ctx, userID, saved))

	loaded, err := repo.GetPolicies(ctx, userID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "pol-1", loaded[0].ID)
	assert.Equal(t, "AIA", loaded[0].Company)
	assert.Equal(t, models.PayMonthly, loaded[0].PaymentFrequency)
	require.Len(t, loaded[0].Coverages, 1)
	assert.Equal(t, models.CoverageHealth, loaded[0].Coverages[0].Type)
	assert.Equal(t, float64(4000), loaded[0].Coverages[0].RoomRate)
	require.Len(t, loaded[0].Documents, 1)
	assert.Equal(t, "doc-1", loaded[0].Documents[0].ID)
	assert.True(t, loaded[0].DueDate.Equal(saved[0].DueDate))
}

func TestPolicyRepository_SaveReplacesList(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewPolicyRepository(db)
	ctx := context.Background()
	userID := testUserID(t)
	defer cleanupUser(t, db, userID)

	first := []models.Policy{{ID: "pol-1"}, {ID: "pol-2"}}
	require.NoError(t, repo.SavePolicies(ctx, userID, first))

	second := []models.Policy{{ID: "pol-3"}}
	require.NoError(t, repo.SavePolicies(ctx, userID, second))

	loaded, err := repo.GetPolicies(ctx, userID)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "pol-3", loaded[0].ID)
}

func TestPolicyRepository_SaveNilStoresEmptyList(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewPolicyRepository(db)
	ctx := context.Background()
	userID := testUserID(t)
	defer cleanupUser(t, db, userID)

	require.NoError(t, repo.SavePolicies(ctx, userID, nil))

	loaded, err := repo.GetPolicies(ctx, userID)
	require.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestPolicyRepository_UsersAreIsolated(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	repo := NewPolicyRepository(db)
	ctx := context.Background()
	userA := testUserID(t)
	userB := testUserID(t)
	defer cleanupUser(t, db, userA)
	defer cleanupUser(t, db, userB)

	require.NoError(t, repo.SavePolicies(ctx, userA, []models.Policy{{ID: "pol-a"}}))
	require.NoError(t, repo.SavePolicies(ctx, userB, []models.Policy{{ID: "pol-b"}}))

	loadedA, err := repo.GetPolicies(ctx, userA)
	require.NoError(t, err)
	require.Len(t, loadedA, 1)
	assert.Equal(t, "pol-a", loadedA[0].ID)

	loadedB, err := repo.GetPolicies(ctx, userB)
	require.NoError(t, err)
	require.Len(t, loadedB, 1)
	assert.Equal(t, "pol-b", loadedB[0].ID)
}
