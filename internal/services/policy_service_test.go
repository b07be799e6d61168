package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/witthaya/prakan/internal/logger"
	"github.com/witthaya/prakan/internal/models"
)

func newPolicyServiceWithMock() (PolicyService, *MockPolicyRepository) {
	mockRepo := new(MockPolicyRepository)
	log := logger.New("test")
	return NewPolicyService(mockRepo, log), mockRepo
}

func TestCreatePolicy_AssignsIDAndClamps(t *testing.T) {
	service, mockRepo := newPolicyServiceWithMock()
	ctx := context.Background()

	mockRepo.On("GetPolicies", ctx, "user-1").Return([]models.Policy{}, nil)
	mockRepo.On("SavePolicies", ctx, "user-1", mock.Anything).Return(nil)

	created, err := service.CreatePolicy(ctx, "user-1", models.Policy{
		Company:          "AIA",
		PlanName:         "Health Happy",
		Premium:          -2000,
		PaymentFrequency: models.PayMonthly,
		DueDate:          time.Now().AddDate(1, 0, 0),
		Coverages: []models.PolicyCoverage{
			{Type: models.CoverageHealth, SumAssured: 500000, RoomRate: -100},
		},
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, float64(0), created.Premium)
	assert.Equal(t, float64(0), created.Coverages[0].RoomRate)
	assert.Equal(t, models.StatusActive, created.Status)
	assert.False(t, created.CreatedAt.IsZero())
	mockRepo.AssertExpectations(t)
}

func TestCreatePolicy_RequiresCoverage(t *testing.T) {
	service, mockRepo := newPolicyServiceWithMock()

	created, err := service.CreatePolicy(context.Background(), "user-1", models.Policy{
		Company:          "AIA",
		PlanName:         "Empty",
		PaymentFrequency: models.PayYearly,
		DueDate:          testDate(2025, time.March, 1),
	})

	assert.Nil(t, created)
	assert.ErrorIs(t, err, ErrNoCoverage)
	mockRepo.AssertNotCalled(t, "SavePolicies")
}

func TestListPolicies_FillsDerivedStatus(t *testing.T) {
	service, mockRepo := newPolicyServiceWithMock()
	ctx := context.Background()

	stored := []models.Policy{
		{
			ID:      "pol-1",
			DueDate: testDate(2024, time.June, 1),
			// Stored status is stale on purpose; reads must overwrite it
			Status: models.StatusActive,
			Coverages: []models.PolicyCoverage{
				{Type: models.CoverageLife, SumAssured: 100000},
			},
		},
	}
	mockRepo.On("GetPolicies", ctx, "user-1").Return(stored, nil)

	policies, err := service.ListPolicies(ctx, "user-1", testDate(2024, time.June, 15))

	require.NoError(t, err)
	require.Len(t, policies, 1)
	assert.Equal(t, models.StatusGracePeriod, policies[0].Status)
	mockRepo.AssertExpectations(t)
}

func TestUpdatePolicy_NotFound(t *testing.T) {
	service, mockRepo := newPolicyServiceWithMock()
	ctx := context.Background()

	mockRepo.On("GetPolicies", ctx, "user-1").Return([]models.Policy{}, nil)

	updated, err := service.UpdatePolicy(ctx, "user-1", models.Policy{
		ID:               "missing",
		Company:          "AIA",
		PlanName:         "Plan",
		PaymentFrequency: models.PayYearly,
		DueDate:          testDate(2025, time.March, 1),
		Coverages: []models.PolicyCoverage{
			{Type: models.CoverageLife, SumAssured: 100000},
		},
	})

	assert.Nil(t, updated)
	assert.ErrorIs(t, err, ErrPolicyNotFound)
	mockRepo.AssertNotCalled(t, "SavePolicies")
}

func TestUpdatePolicy_PreservesDocumentsAndCreatedAt(t *testing.T) {
	service, mockRepo := newPolicyServiceWithMock()
	ctx := context.Background()

	createdAt := testDate(2023, time.January, 1)
	stored := []models.Policy{
		{
			ID:               "pol-1",
			Company:          "AIA",
			PlanName:         "Old Plan",
			Premium:          1000,
			PaymentFrequency: models.PayMonthly,
			DueDate:          testDate(2024, time.June, 1),
			CreatedAt:        createdAt,
			Documents: []models.PolicyDocument{
				{ID: "doc-1", Name: "policy.pdf"},
			},
			Coverages: []models.PolicyCoverage{
				{Type: models.CoverageLife, SumAssured: 100000},
			},
		},
	}
	mockRepo.On("GetPolicies", ctx, "user-1").Return(stored, nil)
	mockRepo.On("SavePolicies", ctx, "user-1", mock.Anything).Return(nil)

	updated, err := service.UpdatePolicy(ctx, "user-1", models.Policy{
		ID:               "pol-1",
		Company:          "AIA",
		PlanName:         "New Plan",
		Premium:          2000,
		PaymentFrequency: models.PayYearly,
		DueDate:          testDate(2025, time.June, 1),
		Coverages: []models.PolicyCoverage{
			{Type: models.CoverageLife, SumAssured: 200000},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "New Plan", updated.PlanName)
	assert.Equal(t, createdAt, updated.CreatedAt)
	require.Len(t, updated.Documents, 1)
	assert.Equal(t, "doc-1", updated.Documents[0].ID)
	mockRepo.AssertExpectations(t)
}

func TestDeletePolicy(t *testing.T) {
	service, mockRepo := newPolicyServiceWithMock()
	ctx := context.Background()

	stored := []models.Policy{
		{ID: "pol-1", Coverages: []models.PolicyCoverage{{Type: models.CoverageLife}}},
		{ID: "pol-2", Coverages: []models.PolicyCoverage{{Type: models.CoverageHealth}}},
	}
	mockRepo.On("GetPolicies", ctx, "user-1").Return(stored, nil)
	mockRepo.On("SavePolicies", ctx, "user-1", mock.MatchedBy(func(policies []models.Policy) bool {
		return len(policies) == 1 && policies[0].ID == "pol-2"
	})).Return(nil)

	err := service.DeletePolicy(ctx, "user-1", "pol-1")

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestDeletePolicy_NotFound(t *testing.T) {
	service, mockRepo := newPolicyServiceWithMock()
	ctx := context.Background()

	mockRepo.On("GetPolicies", ctx, "user-1").Return([]models.Policy{}, nil)

	err := service.DeletePolicy(ctx, "user-1", "missing")

	assert.ErrorIs(t, err, ErrPolicyNotFound)
	mockRepo.AssertNotCalled(t, "SavePolicies")
}

func TestAttachAndRemoveDocument(t *testing.T) {
	service, mockRepo := newPolicyServiceWithMock()
	ctx := context.Background()

	stored := []models.Policy{
		{ID: "pol-1", Coverages: []models.PolicyCoverage{{Type: models.CoverageLife}}},
	}
	doc := models.PolicyDocument{ID: "doc-1", Name: "receipt.pdf"}

	mockRepo.On("GetPolicies", ctx, "user-1").Return(stored, nil)
	mockRepo.On("SavePolicies", ctx, "user-1", mock.Anything).Return(nil)

	err := service.AttachDocument(ctx, "user-1", "pol-1", doc)
	require.NoError(t, err)

	// The mock returns the same slice; the attach above mutated it in place,
	// so the remove sees the attached document.
	removed, err := service.RemoveDocument(ctx, "user-1", "pol-1", "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "receipt.pdf", removed.Name)
}

func TestRemoveDocument_NotFound(t *testing.T) {
	service, mockRepo := newPolicyServiceWithMock()
	ctx := context.Background()

	stored := []models.Policy{
		{ID: "pol-1", Coverages: []models.PolicyCoverage{{Type: models.CoverageLife}}},
	}
	mockRepo.On("GetPolicies", ctx, "user-1").Return(stored, nil)

	removed, err := service.RemoveDocument(ctx, "user-1", "pol-1", "missing")

	assert.Nil(t, removed)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}
