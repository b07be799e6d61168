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

// PolicyRepository defines the interface for policy persistence.
// The full policy list for a user is stored and replaced as one JSON blob,
// keyed by user ID.
type PolicyRepository interface {
	// GetPolicies returns the stored policy list for the user.
	// Returns an empty slice if the user has no stored list (not an error).
	// Returns error only for actual database failures.
	GetPolicies(ctx context.Context, userID string) ([]models.Policy, error)

	// SavePolicies replaces the stored policy list for the user.
	SavePolicies(ctx context.Context, userID string, policies []models.Policy) error
}

// policyRepository is the concrete implementation of PolicyRepository.
type policyRepository struct {
	db *database.Database
}

// NewPolicyRepository creates a new instance of PolicyRepository.
func NewPolicyRepository(db *database.Database) PolicyRepository {
	return &policyRepository{
		db: db,
	}
}

// GetPolicies reads the user's policy blob and decodes it.
func (r *policyRepository) GetPolicies(ctx context.Context, userID string) ([]models.Policy, error) {
	query := `SELECT policies FROM user_policies WHERE user_id = $1`

	var blob []byte
	err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&blob)
	if err != nil {
		// No stored list yet - treat as an empty portfolio
		if errors.Is(err, pgx.ErrNoRows) {
			return []models.Policy{}, nil
		}
		return nil, fmt.Errorf("failed to query policies for user %s: %w", userID, err)
	}

	var policies []models.Policy
	if err := json.Unmarshal(blob, &policies); err != nil {
		return nil, fmt.Errorf("failed to decode policies for user %s: %w", userID, err)
	}

	if policies == nil {
		policies = []models.Policy{}
	}
	return policies, nil
}

// SavePolicies encodes the full list and upserts it in one statement.
func (r *policyRepository) SavePolicies(ctx context.Context, userID string, policies []models.Policy) error {
	if policies == nil {
		policies = []models.Policy{}
	}

	blob, err := json.Marshal(policies)
	if err != nil {
		return fmt.Errorf("failed to encode policies for user %s: %w", userID, err)
	}

	query := `
		INSERT INTO user_policies (user_id, policies, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET policies = EXCLUDED.policies, updated_at = NOW()
	`

	if _, err := r.db.Pool.Exec(ctx, query, userID, blob); err != nil {
		return fmt.Errorf("failed to save policies for user %s: %w", userID, err)
	}
	return nil
}
