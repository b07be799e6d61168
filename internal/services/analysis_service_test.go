package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/witthaya/prakan/internal/ai"
	"github.com/witthaya/prakan/internal/logger"
	"github.com/witthaya/prakan/internal/models"
)

// MockAnalyzer mocks the external analysis client.
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) GapAnalysis(ctx context.Context, req ai.AnalysisRequest) (*ai.GapAnalysis, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.GapAnalysis), args.Error(1)
}

func (m *MockAnalyzer) TaxAdvice(ctx context.Context, req ai.AnalysisRequest) (*ai.TaxAdvice, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ai.TaxAdvice), args.Error(1)
}

func newAnalysisServiceWithMocks() (AnalysisService, *MockPolicyRepository, *MockProfileRepository, *MockAnalyzer) {
	policyRepo := new(MockPolicyRepository)
	profileRepo := new(MockProfileRepository)
	analyzer := new(MockAnalyzer)
	log := logger.New("test")
	return NewAnalysisService(policyRepo, profileRepo, analyzer, log), policyRepo, profileRepo, analyzer
}

func TestGapAnalysis_BuildsSnapshotWithClassifiedStatus(t *testing.T) {
	service, policyRepo, profileRepo, analyzer := newAnalysisServiceWithMocks()
	ctx := context.Background()

	profile := &models.UserProfile{Name: "Somchai", AnnualIncome: 600000}
	profileRepo.On("GetProfile", ctx, "user-1").Return(profile, nil)

	policies := []models.Policy{
		{
			ID:      "pol-1",
			DueDate: time.Now().AddDate(1, 0, 0),
			Coverages: []models.PolicyCoverage{
				{Type: models.CoverageLife, SumAssured: 1000000},
			},
		},
		{
			ID:      "pol-2",
			DueDate: time.Now().AddDate(-1, 0, 0),
			Coverages: []models.PolicyCoverage{
				{Type: models.CoverageHealth, SumAssured: 500000},
			},
		},
	}
	policyRepo.On("GetPolicies", ctx, "user-1").Return(policies, nil)

	expected := &ai.GapAnalysis{Score: 65, Recommendations: []string{"consider critical illness cover"}}
	analyzer.On("GapAnalysis", ctx, mock.MatchedBy(func(req ai.AnalysisRequest) bool {
		return len(req.Policies) == 2 &&
			req.Policies[0].Status == models.StatusActive &&
			req.Policies[1].Status == models.StatusTerminated &&
			req.Profile.Name == "Somchai"
	})).Return(expected, nil)

	result, err := service.GapAnalysis(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, 65, result.Score)
	analyzer.AssertExpectations(t)
}

func TestGapAnalysis_NoProfile(t *testing.T) {
	service, _, profileRepo, analyzer := newAnalysisServiceWithMocks()
	ctx := context.Background()

	profileRepo.On("GetProfile", ctx, "user-1").Return(nil, nil)

	result, err := service.GapAnalysis(ctx, "user-1")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrProfileNotFound)
	analyzer.AssertNotCalled(t, "GapAnalysis")
}

func TestTaxAdvice_PassesThroughResult(t *testing.T) {
	service, policyRepo, profileRepo, analyzer := newAnalysisServiceWithMocks()
	ctx := context.Background()

	profileRepo.On("GetProfile", ctx, "user-1").Return(&models.UserProfile{AnnualIncome: 800000}, nil)
	policyRepo.On("GetPolicies", ctx, "user-1").Return([]models.Policy{}, nil)

	expected := &ai.TaxAdvice{
		Advice:            []string{"increase SSF contributions"},
		SuggestedProducts: []string{"pension annuity"},
		EstimatedBenefit:  24000,
	}
	analyzer.On("TaxAdvice", ctx, mock.Anything).Return(expected, nil)

	result, err := service.TaxAdvice(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, expected, result)
}

func TestTaxAdvice_AnalyzerError(t *testing.T) {
	service, policyRepo, profileRepo, analyzer := newAnalysisServiceWithMocks()
	ctx := context.Background()

	profileRepo.On("GetProfile", ctx, "user-1").Return(&models.UserProfile{}, nil)
	policyRepo.On("GetPolicies", ctx, "user-1").Return([]models.Policy{}, nil)
	analyzer.On("TaxAdvice", ctx, mock.Anything).Return(nil, errors.New("service unavailable"))

	result, err := service.TaxAdvice(ctx, "user-1")

	assert.Nil(t, result)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tax advice failed")
}
