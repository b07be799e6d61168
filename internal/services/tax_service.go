package services

import (
	"context"
	"fmt"
	"time"

	"github.com/witthaya/prakan/internal/logger"
	"github.com/witthaya/prakan/internal/models"
	"github.com/witthaya/prakan/internal/repository"
)

// Thai personal income tax deduction caps.
const (
	personalAllowance       = 60000
	expenseDeductionCap     = 100000
	expenseDeductionRate    = 0.5
	spouseAllowance         = 60000
	parentalCareAllowance   = 30000
	parentHealthCap         = 15000
	childAllowancePerChild  = 30000
	disabledDependentAmount = 60000
	prenatalExpenseCap      = 60000

	lifeHealthPremiumCap  = 100000
	pensionPremiumFlatCap = 200000
	pensionIncomeRate     = 0.15
	investmentCombinedCap = 500000
	thaiESGIncomeRate     = 0.30
	thaiESGCap            = 300000
)

// lifeHealthBucketTypes are the coverage categories whose premiums qualify
// for the life/health insurance deduction. Critical illness qualifies here
// even though it does not count toward total sum assured; the two category
// sets are intentionally kept as separate tables.
var lifeHealthBucketTypes = []models.CoverageType{
	models.CoverageLife,
	models.CoverageHealth,
	models.CoverageSavings,
	models.CoverageCriticalIllness,
}

// taxBracket is one band of the progressive schedule. Upper of 0 means no
// limit. BaseTax is the cumulative liability of all lower bands, so the
// liability for income landing in a band is BaseTax plus the marginal rate
// applied to the excess over Lower.
type taxBracket struct {
	Lower   float64
	Upper   float64
	Rate    float64
	BaseTax float64
}

// thaiBrackets is the progressive personal income tax schedule. Thresholds
// apply to taxable income, not gross income.
var thaiBrackets = []taxBracket{
	{Lower: 0, Upper: 150000, Rate: 0, BaseTax: 0},
	{Lower: 150000, Upper: 300000, Rate: 0.05, BaseTax: 0},
	{Lower: 300000, Upper: 500000, Rate: 0.10, BaseTax: 7500},
	{Lower: 500000, Upper: 750000, Rate: 0.15, BaseTax: 27500},
	{Lower: 750000, Upper: 1000000, Rate: 0.20, BaseTax: 65000},
	{Lower: 1000000, Upper: 2000000, Rate: 0.25, BaseTax: 115000},
	{Lower: 2000000, Upper: 5000000, Rate: 0.30, BaseTax: 365000},
	{Lower: 5000000, Upper: 0, Rate: 0.35, BaseTax: 1265000},
}

// TaxComponentBreakdown itemizes every figure that fed the total deduction.
type TaxComponentBreakdown struct {
	Personal              float64 `json:"personal"`
	Expense               float64 `json:"expense"`
	Spouse                float64 `json:"spouse"`
	ParentalCare          float64 `json:"parentalCare"`
	ParentHealthInsurance float64 `json:"parentHealthInsurance"`
	ChildAllowance        float64 `json:"childAllowance"`
	DisabledDependent     float64 `json:"disabledDependent"`
	Prenatal              float64 `json:"prenatal"`
	LifeHealthUsed        float64 `json:"lifeHealthUsed"`
	PensionUsed           float64 `json:"pensionUsed"`
	PensionMaxLimit       float64 `json:"pensionMaxLimit"`
	InvestmentCombined    float64 `json:"investmentCombined"`
	ThaiESG               float64 `json:"thaiEsg"`
	Other                 float64 `json:"other"`
}

// TaxResult is the outcome of one tax computation pass.
// NetRefund is positive for a refund and negative for an amount payable.
type TaxResult struct {
	BracketRate    float64               `json:"bracketRate"`
	TotalDeduction float64               `json:"totalDeduction"`
	TaxableIncome  float64               `json:"taxableIncome"`
	TaxLiability   float64               `json:"taxLiability"`
	NetRefund      float64               `json:"netRefund"`
	Breakdown      TaxComponentBreakdown `json:"breakdown"`
}

// ComputeTax applies the Thai progressive schedule and category caps to a
// profile and its non-terminated policies. Pure computation: the reference
// date only selects which policies still count as active-or-grace.
func ComputeTax(profile models.UserProfile, policies []models.Policy, asOf time.Time) TaxResult {
	income := profile.AnnualIncome
	if income < 0 {
		income = 0
	}
	// Normalize a copy; the caller's deductions record is shared by pointer
	ded := profile.DeductionsOrZero()
	ded.Normalize()

	// Partition annualized premiums of active-or-grace policies into the
	// pension and life/health buckets. Pension membership is checked first;
	// a policy carrying both never counts twice.
	var pensionPremiums, lifeHealthPremiums float64
	for _, p := range policies {
		if p.StatusAt(asOf) == models.StatusTerminated {
			continue
		}
		// Clamp into a local so the caller's coverage lines stay untouched
		premium := p.Premium
		if premium < 0 {
			premium = 0
		}
		annual := premium * p.PaymentFrequency.AnnualFactor()
		if p.HasCoverage(models.CoveragePension) {
			pensionPremiums += annual
			continue
		}
		for _, t := range lifeHealthBucketTypes {
			if p.HasCoverage(t) {
				lifeHealthPremiums += annual
				break
			}
		}
	}

	b := TaxComponentBreakdown{
		Personal:              personalAllowance,
		Expense:               min2(income*expenseDeductionRate, expenseDeductionCap),
		ParentHealthInsurance: min2(ded.ParentHealthInsurance, parentHealthCap),
		ChildAllowance:        float64(ded.ChildAllowanceCount) * childAllowancePerChild,
		DisabledDependent:     float64(ded.DisabledDependentCount) * disabledDependentAmount,
		Prenatal:              min2(ded.PrenatalExpense, prenatalExpenseCap),
		LifeHealthUsed:        min2(lifeHealthPremiums, lifeHealthPremiumCap),
		PensionMaxLimit:       min2(pensionPremiumFlatCap, income*pensionIncomeRate),
	}
	if ded.SpouseNoIncome {
		b.Spouse = spouseAllowance
	}
	if ded.SupportsFather {
		b.ParentalCare += parentalCareAllowance
	}
	if ded.SupportsMother {
		b.ParentalCare += parentalCareAllowance
	}

	b.PensionUsed = min2(pensionPremiums, b.PensionMaxLimit)

	// Pension insurance shares the combined investment cap with the
	// retirement funds; it enters the total exactly once through this figure.
	b.InvestmentCombined = min2(ded.SSF+ded.RMF+ded.PVD+b.PensionUsed, investmentCombinedCap)

	b.ThaiESG = min2(ded.ThaiESG, min2(income*thaiESGIncomeRate, thaiESGCap))

	// Education donations are double-weighted; nothing in this group is capped.
	b.Other = ded.SocialSecurity + ded.HomeLoanInterest +
		ded.DonationGeneral + ded.DonationEducation*2 + ded.OtherDeductions

	totalDeduction := b.Personal + b.Expense + b.Spouse + b.ParentalCare +
		b.ParentHealthInsurance + b.ChildAllowance + b.DisabledDependent +
		b.Prenatal + b.InvestmentCombined + b.ThaiESG + b.Other + b.LifeHealthUsed

	taxableIncome := income - totalDeduction
	if taxableIncome < 0 {
		taxableIncome = 0
	}

	bracket := bracketFor(taxableIncome)
	liability := bracket.BaseTax + (taxableIncome-bracket.Lower)*bracket.Rate

	return TaxResult{
		BracketRate:    bracket.Rate * 100,
		TotalDeduction: totalDeduction,
		TaxableIncome:  taxableIncome,
		TaxLiability:   liability,
		NetRefund:      ded.TaxWithheld - liability,
		Breakdown:      b,
	}
}

// bracketFor returns the band the taxable income falls into. Band upper
// bounds are inclusive, so income exactly on a threshold stays in the lower
// band.
func bracketFor(taxableIncome float64) taxBracket {
	for _, b := range thaiBrackets {
		if b.Upper == 0 || taxableIncome <= b.Upper {
			return b
		}
	}
	return thaiBrackets[len(thaiBrackets)-1]
}

func min2(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// TaxService defines the interface for tax computation over stored data.
type TaxService interface {
	// Compute loads the user's profile and policies and runs the calculator.
	// Returns ErrProfileNotFound if the user has not onboarded yet.
	Compute(ctx context.Context, userID string, asOf time.Time) (*TaxResult, error)
}

// taxService is the concrete implementation of TaxService.
type taxService struct {
	policies repository.PolicyRepository
	profiles repository.ProfileRepository
	log      *logger.Logger
}

// NewTaxService creates a new instance of TaxService.
func NewTaxService(policies repository.PolicyRepository, profiles repository.ProfileRepository, log *logger.Logger) TaxService {
	return &taxService{
		policies: policies,
		profiles: profiles,
		log:      log,
	}
}

func (s *taxService) Compute(ctx context.Context, userID string, asOf time.Time) (*TaxResult, error) {
	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load profile for tax computation", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	policies, err := s.policies.GetPolicies(ctx, userID)
	if err != nil {
		s.log.Error("Failed to load policies for tax computation", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to load policies: %w", err)
	}

	result := ComputeTax(*profile, policies, asOf)

	s.log.Info("Tax computed", map[string]interface{}{
		"user_id":        userID,
		"as_of":          asOf.Format("2006-01-02"),
		"taxable_income": result.TaxableIncome,
		"liability":      result.TaxLiability,
		"bracket":        result.BracketRate,
	})

	return &result, nil
}
