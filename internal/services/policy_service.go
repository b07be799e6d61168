package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/witthaya/prakan/internal/logger"
	"github.com/witthaya/prakan/internal/models"
	"github.com/witthaya/prakan/internal/repository"
)

// Service-level errors
var (
	ErrPolicyNotFound   = errors.New("policy not found")
	ErrNoCoverage       = errors.New("policy must have at least one coverage line")
	ErrDocumentNotFound = errors.New("document not found")
	ErrProfileNotFound  = errors.New("profile not found")
)

// PolicyService defines the interface for policy business logic operations.
// All reads fill the denormalized Status field from the lifecycle classifier
// as of the supplied reference date; stored status is never trusted.
type PolicyService interface {
	// ListPolicies returns the user's policies with status classified as of asOf.
	ListPolicies(ctx context.Context, userID string, asOf time.Time) ([]models.Policy, error)

	// CreatePolicy normalizes and stores a new policy, assigning its ID.
	// Returns ErrNoCoverage if the coverage list is empty.
	CreatePolicy(ctx context.Context, userID string, policy models.Policy) (*models.Policy, error)

	// UpdatePolicy replaces an existing policy's user-editable fields.
	// Returns ErrPolicyNotFound if no policy with the given ID exists.
	// Returns ErrNoCoverage if the coverage list is empty.
	UpdatePolicy(ctx context.Context, userID string, policy models.Policy) (*models.Policy, error)

	// DeletePolicy removes a policy from the user's list.
	// Returns ErrPolicyNotFound if no policy with the given ID exists.
	DeletePolicy(ctx context.Context, userID, policyID string) error

	// AttachDocument appends document metadata to a policy.
	// Returns ErrPolicyNotFound if no policy with the given ID exists.
	AttachDocument(ctx context.Context, userID, policyID string, doc models.PolicyDocument) error

	// FindDocument returns the metadata of one attached document.
	// Returns ErrPolicyNotFound / ErrDocumentNotFound as appropriate.
	FindDocument(ctx context.Context, userID, policyID, docID string) (*models.PolicyDocument, error)

	// RemoveDocument detaches document metadata from a policy and returns it
	// so the caller can delete the underlying file.
	// Returns ErrPolicyNotFound / ErrDocumentNotFound as appropriate.
	RemoveDocument(ctx context.Context, userID, policyID, docID string) (*models.PolicyDocument, error)
}

// policyService is the concrete implementation of PolicyService.
type policyService struct {
	repo repository.PolicyRepository
	log  *logger.Logger
}

// NewPolicyService creates a new instance of PolicyService.
func NewPolicyService(repo repository.PolicyRepository, log *logger.Logger) PolicyService {
	return &policyService{
		repo: repo,
		log:  log,
	}
}

// ListPolicies loads the stored list and recomputes each policy's status.
func (s *policyService) ListPolicies(ctx context.Context, userID string, asOf time.Time) ([]models.Policy, error) {
	policies, err := s.repo.GetPolicies(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load policies", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	for i := range policies {
		policies[i].Status = policies[i].StatusAt(asOf)
	}

	s.log.Debug("Policies loaded", map[string]interface{}{
		"user_id": userID,
		"count":   len(policies),
	})

	return policies, nil
}

// CreatePolicy validates, normalizes, and appends the policy to the stored list.
func (s *policyService) CreatePolicy(ctx context.Context, userID string, policy models.Policy) (*models.Policy, error) {
	if len(policy.Coverages) == 0 {
		return nil, ErrNoCoverage
	}

	policy.ID = uuid.New().String()
	policy.Normalize()
	now := time.Now()
	policy.CreatedAt = now
	policy.UpdatedAt = now
	policy.Status = policy.StatusAt(now)
	policy.Documents = nil

	policies, err := s.repo.GetPolicies(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	policies = append(policies, policy)
	if err := s.repo.SavePolicies(ctx, userID, policies); err != nil {
		s.log.Error("Failed to save policies", err, map[string]interface{}{
			"user_id":   userID,
			"policy_id": policy.ID,
		})
		return nil, fmt.Errorf("failed to save policies: %w", err)
	}

	s.log.Info("Policy created", map[string]interface{}{
		"user_id":   userID,
		"policy_id": policy.ID,
		"company":   policy.Company,
		"plan":      policy.PlanName,
	})

	return &policy, nil
}

// UpdatePolicy replaces the user-editable fields of a stored policy in place.
// Attached document metadata and creation time survive the edit.
func (s *policyService) UpdatePolicy(ctx context.Context, userID string, policy models.Policy) (*models.Policy, error) {
	if len(policy.Coverages) == 0 {
		return nil, ErrNoCoverage
	}

	policies, err := s.repo.GetPolicies(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	idx := indexOfPolicy(policies, policy.ID)
	if idx < 0 {
		return nil, ErrPolicyNotFound
	}

	existing := policies[idx]
	policy.Normalize()
	existing.Company = policy.Company
	existing.PlanName = policy.PlanName
	existing.Coverages = policy.Coverages
	existing.Premium = policy.Premium
	existing.PaymentFrequency = policy.PaymentFrequency
	existing.DueDate = policy.DueDate
	existing.UpdatedAt = time.Now()
	existing.Status = existing.StatusAt(existing.UpdatedAt)
	policies[idx] = existing

	if err := s.repo.SavePolicies(ctx, userID, policies); err != nil {
		s.log.Error("Failed to save policies", err, map[string]interface{}{
			"user_id":   userID,
			"policy_id": existing.ID,
		})
		return nil, fmt.Errorf("failed to save policies: %w", err)
	}

	s.log.Info("Policy updated", map[string]interface{}{
		"user_id":   userID,
		"policy_id": existing.ID,
	})

	return &existing, nil
}

// DeletePolicy removes the policy from the stored list.
func (s *policyService) DeletePolicy(ctx context.Context, userID, policyID string) error {
	policies, err := s.repo.GetPolicies(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}

	idx := indexOfPolicy(policies, policyID)
	if idx < 0 {
		return ErrPolicyNotFound
	}

	policies = append(policies[:idx], policies[idx+1:]...)
	if err := s.repo.SavePolicies(ctx, userID, policies); err != nil {
		s.log.Error("Failed to save policies", err, map[string]interface{}{
			"user_id":   userID,
			"policy_id": policyID,
		})
		return fmt.Errorf("failed to save policies: %w", err)
	}

	s.log.Info("Policy deleted", map[string]interface{}{
		"user_id":   userID,
		"policy_id": policyID,
	})

	return nil
}

// AttachDocument appends document metadata to the policy's list.
func (s *policyService) AttachDocument(ctx context.Context, userID, policyID string, doc models.PolicyDocument) error {
	policies, err := s.repo.GetPolicies(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}

	idx := indexOfPolicy(policies, policyID)
	if idx < 0 {
		return ErrPolicyNotFound
	}

	policies[idx].Documents = append(policies[idx].Documents, doc)
	policies[idx].UpdatedAt = time.Now()

	if err := s.repo.SavePolicies(ctx, userID, policies); err != nil {
		return fmt.Errorf("failed to save policies: %w", err)
	}

	s.log.Info("Document attached", map[string]interface{}{
		"user_id":     userID,
		"policy_id":   policyID,
		"document_id": doc.ID,
		"name":        doc.Name,
	})

	return nil
}

// FindDocument locates one attached document's metadata.
func (s *policyService) FindDocument(ctx context.Context, userID, policyID, docID string) (*models.PolicyDocument, error) {
	policies, err := s.repo.GetPolicies(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	idx := indexOfPolicy(policies, policyID)
	if idx < 0 {
		return nil, ErrPolicyNotFound
	}

	for _, doc := range policies[idx].Documents {
		if doc.ID == docID {
			return &doc, nil
		}
	}
	return nil, ErrDocumentNotFound
}

// RemoveDocument detaches one document's metadata and returns it.
func (s *policyService) RemoveDocument(ctx context.Context, userID, policyID, docID string) (*models.PolicyDocument, error) {
	policies, err := s.repo.GetPolicies(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	idx := indexOfPolicy(policies, policyID)
	if idx < 0 {
		return nil, ErrPolicyNotFound
	}

	docs := policies[idx].Documents
	for i, doc := range docs {
		if doc.ID != docID {
			continue
		}
		policies[idx].Documents = append(docs[:i], docs[i+1:]...)
		policies[idx].UpdatedAt = time.Now()
		if err := s.repo.SavePolicies(ctx, userID, policies); err != nil {
			return nil, fmt.Errorf("failed to save policies: %w", err)
		}
		s.log.Info("Document removed", map[string]interface{}{
			"user_id":     userID,
			"policy_id":   policyID,
			"document_id": docID,
		})
		return &doc, nil
	}
	return nil, ErrDocumentNotFound
}

// indexOfPolicy returns the index of the policy with the given ID, or -1.
func indexOfPolicy(policies []models.Policy, id string) int {
	for i := range policies {
		if policies[i].ID == id {
			return i
		}
	}
	return -1
}
