package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/witthaya/prakan/internal/database"
	"github.com/witthaya/prakan/internal/models"
)

// ProfileRepository defines the interface for user profile persistence.
// One profile exists per user, stored as a JSON blob and replaced wholesale.
type ProfileRepository interface {
	// GetProfile returns the stored profile for the user.
	// Returns nil, nil if no profile has been saved yet (not an error).
	// Returns error only for actual database failures.
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)

	// SaveProfile replaces the stored profile for the user.
	SaveProfile(ctx context.Context, userID string, profile models.UserProfile) error
}

// profileRepository is the concrete implementation of ProfileRepository.
type profileRepository struct {
	db *database.Database
}

// NewProfileRepository creates a new instance of ProfileRepository.
func NewProfileRepository(db *database.Database) ProfileRepository {
	return &profileRepository{
		db: db,
	}
}

// GetProfile reads the user's profile blob and decodes it.
func (r *profileRepository) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	query := `SELECT profile FROM user_profiles WHERE user_id = $1`

	var blob []byte
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&blob)
	if err != nil {
		// Not onboarded yet - this is not an error at the repository level
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query profile for user %s: %w", userID, err)
	}

	var profile models.UserProfile
	if err := json.Unmarshal(blob, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile for user %s: %w", userID, err)
	}
	return &profile, nil
}

// SaveProfile encodes the profile and upserts it in one statement.
func (r *profileRepository) SaveProfile(ctx context.Context, userID string, profile models.UserProfile) error {
	blob, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile for user %s: %w", userID, err)
	}

	query := `
		INSERT INTO user_profiles (user_id, profile, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET profile = EXCLUDED.profile, updated_at = NOW()
	`

	if _, err := r.db.Pool.Exec(ctx, query, userID, blob); err != nil {
		return fmt.Errorf("failed to save profile for user %s: %w", userID, err)
	}
	return nil
}
