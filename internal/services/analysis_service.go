package services

import (
	"context"
	"fmt"
	"time"

	"github.com/witthaya/prakan/internal/ai"
	"github.com/witthaya/prakan/internal/logger"
	"github.com/witthaya/prakan/internal/repository"
)

// Analyzer is the slice of the AI client this service needs. The results are
// untrusted external content and are passed through unmodified.
type Analyzer interface {
	GapAnalysis(ctx context.Context, req ai.AnalysisRequest) (*ai.GapAnalysis, error)
	TaxAdvice(ctx context.Context, req ai.AnalysisRequest) (*ai.TaxAdvice, error)
}

// AnalysisService assembles the portfolio snapshot and forwards it to the
// external analysis service.
type AnalysisService interface {
	// GapAnalysis returns the AI's coverage assessment for the user.
	// Returns ErrProfileNotFound if the user has not onboarded yet.
	GapAnalysis(ctx context.Context, userID string) (*ai.GapAnalysis, error)

	// TaxAdvice returns the AI's tax planning suggestions for the user.
	// Returns ErrProfileNotFound if the user has not onboarded yet.
	TaxAdvice(ctx context.Context, userID string) (*ai.TaxAdvice, error)
}

type analysisService struct {
	policies repository.PolicyRepository
	profiles repository.ProfileRepository
	analyzer Analyzer
	log      *logger.Logger
}

// NewAnalysisService creates a new instance of AnalysisService.
func NewAnalysisService(policies repository.PolicyRepository, profiles repository.ProfileRepository, analyzer Analyzer, log *logger.Logger) AnalysisService {
	return &analysisService{
		policies: policies,
		profiles: profiles,
		analyzer: analyzer,
		log:      log,
	}
}

func (s *analysisService) GapAnalysis(ctx context.Context, userID string) (*ai.GapAnalysis, error) {
	req, err := s.buildRequest(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.analyzer.GapAnalysis(ctx, *req)
	if err != nil {
		s.log.Error("Gap analysis failed", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("gap analysis failed: %w", err)
	}

	s.log.Info("Gap analysis received", map[string]interface{}{
		"user_id": userID,
		"score":   result.Score,
		"gaps":    len(result.Gaps),
	})

	return result, nil
}

func (s *analysisService) TaxAdvice(ctx context.Context, userID string) (*ai.TaxAdvice, error) {
	req, err := s.buildRequest(ctx, userID)
	if err != nil {
		return nil, err
	}

	result, err := s.analyzer.TaxAdvice(ctx, *req)
	if err != nil {
		s.log.Error("Tax advice failed", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("tax advice failed: %w", err)
	}

	s.log.Info("Tax advice received", map[string]interface{}{
		"user_id":           userID,
		"advice_count":      len(result.Advice),
		"estimated_benefit": result.EstimatedBenefit,
	})

	return result, nil
}

// buildRequest loads the profile and policies that make up the snapshot sent
// to the analysis service. Policies carry their classified status so the
// service sees the same view the dashboard does.
func (s *analysisService) buildRequest(ctx context.Context, userID string) (*ai.AnalysisRequest, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	policies, err := s.policies.GetPolicies(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	now := time.Now()
	for i := range policies {
		policies[i].Status = policies[i].StatusAt(now)
	}

	return &ai.AnalysisRequest{
		Policies: policies,
		Profile:  *profile,
	}, nil
}
