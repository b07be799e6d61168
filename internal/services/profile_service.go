package services

import (
	"context"
	"fmt"

	"github.com/witthaya/prakan/internal/logger"
	"github.com/witthaya/prakan/internal/models"
	"github.com/witthaya/prakan/internal/repository"
)

// ProfileService defines the interface for user profile operations.
type ProfileService interface {
	// GetProfile returns the user's profile.
	// Returns ErrProfileNotFound if the user has not onboarded yet.
	GetProfile(ctx context.Context, userID string) (*models.UserProfile, error)

	// SaveProfile normalizes and replaces the user's profile wholesale.
	SaveProfile(ctx context.Context, userID string, profile models.UserProfile) (*models.UserProfile, error)
}

// profileService is the concrete implementation of ProfileService.
type profileService struct {
	repo repository.ProfileRepository
	log  *logger.Logger
}

// NewProfileService creates a new instance of ProfileService.
func NewProfileService(repo repository.ProfileRepository, log *logger.Logger) ProfileService {
	return &profileService{
		repo: repo,
		log:  log,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	profile, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load profile", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	// Repository returns nil, nil when nothing is stored - transform to domain error
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	return profile, nil
}

func (s *profileService) SaveProfile(ctx context.Context, userID string, profile models.UserProfile) (*models.UserProfile, error) {
	profile.Normalize()

	if err := s.repo.SaveProfile(ctx, userID, profile); err != nil {
		s.log.Error("Failed to save profile", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}

	s.log.Info("Profile saved", map[string]interface{}{
		"user_id": userID,
		"name":    profile.Name,
	})

	return &profile, nil
}
