package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/witthaya/prakan/internal/logger"
	"github.com/witthaya/prakan/internal/models"
	"github.com/witthaya/prakan/internal/repository"
)

// capitalCoverageTypes are the wealth-replacement coverage categories that
// count toward total sum assured. Indemnity/benefit categories (health,
// accident, critical illness, hospital benefit) are excluded from this
// particular rollup.
var capitalCoverageTypes = map[models.CoverageType]bool{
	models.CoverageLife:    true,
	models.CoveragePension: true,
	models.CoverageSavings: true,
}

// CoverageSlice is one entry of the coverage distribution: the summed sum
// assured for a coverage type and its share of the all-types total. The
// share denominator is the sum over every type present, which is a different
// figure from TotalSumAssured's capital-only definition.
type CoverageSlice struct {
	Type        models.CoverageType `json:"type"`
	DisplayName string              `json:"displayName"`
	SumAssured  float64             `json:"sumAssured"`
	Share       float64             `json:"share"`
}

// RenewalEntry is one row of the upcoming-renewals preview.
type RenewalEntry struct {
	PolicyID string              `json:"policyId"`
	Company  string              `json:"company"`
	PlanName string              `json:"planName"`
	DueDate  time.Time           `json:"dueDate"`
	Status   models.PolicyStatus `json:"status"`
}

// PortfolioSummary holds the scalar rollups shown on dashboards and reports.
type PortfolioSummary struct {
	AsOf                 time.Time       `json:"asOf"`
	PolicyCount          int             `json:"policyCount"`
	ActiveCount          int             `json:"activeCount"`
	TotalSumAssured      float64         `json:"totalSumAssured"`
	TotalHospitalBenefit float64         `json:"totalHospitalBenefit"`
	TotalDailyRoomRate   float64         `json:"totalDailyRoomRate"`
	AnnualPremium        float64         `json:"annualPremium"`
	CoverageDistribution []CoverageSlice `json:"coverageDistribution"`
	UpcomingRenewals     []RenewalEntry  `json:"upcomingRenewals"`
}

// BuildPortfolioSummary reduces a policy snapshot into the dashboard rollups.
// The reference date is read once by the caller and held fixed for the whole
// pass so no classification can flip mid-computation. Unless noted, rollups
// cover the active-or-grace subset; the renewals preview covers everything.
func BuildPortfolioSummary(policies []models.Policy, asOf time.Time, previewCount int) PortfolioSummary {
	summary := PortfolioSummary{
		AsOf:                 asOf,
		PolicyCount:          len(policies),
		CoverageDistribution: []CoverageSlice{},
		UpcomingRenewals:     []RenewalEntry{},
	}

	distribution := make(map[models.CoverageType]float64)

	for _, p := range policies {
		status := p.StatusAt(asOf)
		if status == models.StatusTerminated {
			continue
		}
		summary.ActiveCount++
		summary.AnnualPremium += p.AnnualizedPremium()

		for _, c := range p.Coverages {
			if capitalCoverageTypes[c.Type] {
				summary.TotalSumAssured += c.SumAssured
			}
			if c.Type == models.CoverageHospitalBenefit {
				summary.TotalHospitalBenefit += c.SumAssured
			}
			// Room rate sums whatever is present, regardless of coverage type
			summary.TotalDailyRoomRate += c.RoomRate
			distribution[c.Type] += c.SumAssured
		}
	}

	// Distribution shares use the all-types total as denominator
	var distributionTotal float64
	for _, sum := range distribution {
		distributionTotal += sum
	}
	for _, t := range models.AllCoverageTypes {
		sum, ok := distribution[t]
		if !ok {
			continue
		}
		slice := CoverageSlice{
			Type:        t,
			DisplayName: t.DisplayName(),
			SumAssured:  sum,
		}
		if distributionTotal > 0 {
			slice.Share = sum / distributionTotal * 100
		}
		summary.CoverageDistribution = append(summary.CoverageDistribution, slice)
	}

	// Renewals preview covers all policies, terminated included
	renewals := make([]RenewalEntry, 0, len(policies))
	for _, p := range policies {
		renewals = append(renewals, RenewalEntry{
			PolicyID: p.ID,
			Company:  p.Company,
			PlanName: p.PlanName,
			DueDate:  p.DueDate,
			Status:   p.StatusAt(asOf),
		})
	}
	sort.SliceStable(renewals, func(i, j int) bool {
		if renewals[i].DueDate.Equal(renewals[j].DueDate) {
			return renewals[i].PolicyID < renewals[j].PolicyID
		}
		return renewals[i].DueDate.Before(renewals[j].DueDate)
	})
	if previewCount > 0 && len(renewals) > previewCount {
		renewals = renewals[:previewCount]
	}
	summary.UpcomingRenewals = renewals

	return summary
}

// PortfolioService defines the interface for portfolio rollup operations.
type PortfolioService interface {
	// Summary loads the user's policies and reduces them into dashboard
	// rollups as of the given reference date.
	Summary(ctx context.Context, userID string, asOf time.Time) (*PortfolioSummary, error)
}

// portfolioService is the concrete implementation of PortfolioService.
type portfolioService struct {
	repo         repository.PolicyRepository
	log          *logger.Logger
	previewCount int
}

// NewPortfolioService creates a new instance of PortfolioService.
// previewCount bounds the upcoming-renewals list.
func NewPortfolioService(repo repository.PolicyRepository, log *logger.Logger, previewCount int) PortfolioService {
	return &portfolioService{
		repo:         repo,
		log:          log,
		previewCount: previewCount,
	}
}

func (s *portfolioService) Summary(ctx context.Context, userID string, asOf time.Time) (*PortfolioSummary, error) {
	policies, err := s.repo.GetPolicies(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load policies for summary", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	summary := BuildPortfolioSummary(policies, asOf, s.previewCount)

	s.log.Info("Portfolio summary built", map[string]interface{}{
		"user_id":        userID,
		"as_of":          asOf.Format("2006-01-02"),
		"policy_count":   summary.PolicyCount,
		"active_count":   summary.ActiveCount,
		"annual_premium": summary.AnnualPremium,
	})

	return &summary, nil
}
