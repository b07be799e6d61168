package models

import (
	"time"
)

// CoverageType is the closed set of coverage categories a policy line can
// carry. Values are stored as-is in JSON; human-facing labels live in
// DisplayName so presentation stays out of the domain layer.
type CoverageType string

const (
	CoverageLife            CoverageType = "life"
	CoverageHealth          CoverageType = "health"
	CoverageAccident        CoverageType = "accident"
	CoverageCriticalIllness CoverageType = "critical_illness"
	CoverageSavings         CoverageType = "savings"
	CoveragePension         CoverageType = "pension"
	CoverageHospitalBenefit CoverageType = "hospital_benefit"
)

// AllCoverageTypes lists every coverage type in a fixed order. Rollups that
// iterate coverage types use this order so output is deterministic.
var AllCoverageTypes = []CoverageType{
	CoverageLife,
	CoverageHealth,
	CoverageAccident,
	CoverageCriticalIllness,
	CoverageSavings,
	CoveragePension,
	CoverageHospitalBenefit,
}

// Valid reports whether the coverage type is one of the known values.
func (c CoverageType) Valid() bool {
	switch c {
	case CoverageLife, CoverageHealth, CoverageAccident, CoverageCriticalIllness,
		CoverageSavings, CoveragePension, CoverageHospitalBenefit:
		return true
	}
	return false
}

// DisplayName returns the human-facing label for the coverage type.
func (c CoverageType) DisplayName() string {
	switch c {
	case CoverageLife:
		return "Life"
	case CoverageHealth:
		return "Health"
	case CoverageAccident:
		return "Accident"
	case CoverageCriticalIllness:
		return "Critical Illness"
	case CoverageSavings:
		return "Savings/Endowment"
	case CoveragePension:
		return "Pension/Retirement"
	case CoverageHospitalBenefit:
		return "Hospital Benefit"
	default:
		return string(c)
	}
}

// PaymentFrequency is how often a policy premium is paid.
type PaymentFrequency string

const (
	PayMonthly   PaymentFrequency = "monthly"
	PayQuarterly PaymentFrequency = "quarterly"
	PayYearly    PaymentFrequency = "yearly"
)

// Valid reports whether the payment frequency is one of the known values.
func (f PaymentFrequency) Valid() bool {
	switch f {
	case PayMonthly, PayQuarterly, PayYearly:
		return true
	}
	return false
}

// AnnualFactor returns the multiplier that normalizes a premium paid at this
// frequency to a yearly-equivalent figure.
func (f PaymentFrequency) AnnualFactor() float64 {
	switch f {
	case PayMonthly:
		return 12
	case PayQuarterly:
		return 4
	default:
		return 1
	}
}

// PolicyCoverage is a single coverage line within a policy. It is owned
// exclusively by its parent policy and has no independent lifecycle.
type PolicyCoverage struct {
	Type       CoverageType `json:"type"`
	SumAssured float64      `json:"sumAssured"`
	// RoomRate is the daily hospital room-and-board benefit. The source data
	// only populates it for health lines; rollups still sum whatever is present.
	RoomRate float64 `json:"roomRate,omitempty"`
}

// PolicyDocument is metadata for a file attached to a policy. File content
// lives in the document store; the policy only tracks the pointer.
type PolicyDocument struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   string    `json:"category,omitempty"`
	MimeType   string    `json:"mimeType,omitempty"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Policy is an insurance contract held by a user.
//
// Status is denormalized: it is filled from ClassifyStatus whenever the
// policy is read and is never authoritative. Business logic must always
// recompute status from DueDate.
type Policy struct {
	ID               string           `json:"id"`
	Company          string           `json:"company"`
	PlanName         string           `json:"planName"`
	Coverages        []PolicyCoverage `json:"coverages"`
	Premium          float64          `json:"premium"`
	PaymentFrequency PaymentFrequency `json:"paymentFrequency"`
	DueDate          time.Time        `json:"dueDate"`
	Status           PolicyStatus     `json:"status,omitempty"`
	Documents        []PolicyDocument `json:"documents,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Normalize clamps all monetary fields to be non-negative. Malformed inputs
// are clamped at the boundary rather than rejected.
func (p *Policy) Normalize() {
	p.Premium = clampNonNegative(p.Premium)
	for i := range p.Coverages {
		p.Coverages[i].SumAssured = clampNonNegative(p.Coverages[i].SumAssured)
		p.Coverages[i].RoomRate = clampNonNegative(p.Coverages[i].RoomRate)
	}
}

// AnnualizedPremium returns the premium normalized to a yearly-equivalent
// figure regardless of payment cadence.
func (p Policy) AnnualizedPremium() float64 {
	return p.Premium * p.PaymentFrequency.AnnualFactor()
}

// HasCoverage reports whether any coverage line on the policy is of the
// given type.
func (p Policy) HasCoverage(t CoverageType) bool {
	for _, c := range p.Coverages {
		if c.Type == t {
			return true
		}
	}
	return false
}

// StatusAt classifies the policy's lifecycle state as of the given date.
func (p Policy) StatusAt(today time.Time) PolicyStatus {
	return ClassifyStatus(p.DueDate, today)
}

func clampNonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
