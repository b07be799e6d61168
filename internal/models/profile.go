package models

import (
	"time"
)

// TaxDeductions holds the itemized deduction inputs a user declares for the
// tax year. All monetary fields default to zero and all flags to false; the
// calculator applies its own per-category caps on top of these raw inputs.
type TaxDeductions struct {
	SocialSecurity   float64 `json:"socialSecurity"`
	HomeLoanInterest float64 `json:"homeLoanInterest"`

	// Retirement fund contributions; combined with the pension insurance
	// figure under a shared cap by the calculator.
	SSF float64 `json:"ssf"`
	RMF float64 `json:"rmf"`
	PVD float64 `json:"pvd"`

	ThaiESG float64 `json:"thaiEsg"`

	SupportsFather        bool    `json:"supportsFather"`
	SupportsMother        bool    `json:"supportsMother"`
	ParentHealthInsurance float64 `json:"parentHealthInsurance"`

	ChildAllowanceCount    int  `json:"childAllowanceCount"`
	SpouseNoIncome         bool `json:"spouseNoIncome"`
	DisabledDependentCount int  `json:"disabledDependentCount"`

	PrenatalExpense   float64 `json:"prenatalExpense"`
	DonationGeneral   float64 `json:"donationGeneral"`
	DonationEducation float64 `json:"donationEducation"`
	OtherDeductions   float64 `json:"otherDeductions"`

	TaxWithheld float64 `json:"taxWithheld"`
}

// Normalize clamps monetary and count inputs to be non-negative.
func (d *TaxDeductions) Normalize() {
	d.SocialSecurity = clampNonNegative(d.SocialSecurity)
	d.HomeLoanInterest = clampNonNegative(d.HomeLoanInterest)
	d.SSF = clampNonNegative(d.SSF)
	d.RMF = clampNonNegative(d.RMF)
	d.PVD = clampNonNegative(d.PVD)
	d.ThaiESG = clampNonNegative(d.ThaiESG)
	d.ParentHealthInsurance = clampNonNegative(d.ParentHealthInsurance)
	d.PrenatalExpense = clampNonNegative(d.PrenatalExpense)
	d.DonationGeneral = clampNonNegative(d.DonationGeneral)
	d.DonationEducation = clampNonNegative(d.DonationEducation)
	d.OtherDeductions = clampNonNegative(d.OtherDeductions)
	d.TaxWithheld = clampNonNegative(d.TaxWithheld)
	if d.ChildAllowanceCount < 0 {
		d.ChildAllowanceCount = 0
	}
	if d.DisabledDependentCount < 0 {
		d.DisabledDependentCount = 0
	}
}

// UserProfile is the policyholder's financial and demographic context. One
// profile exists per user and is replaced wholesale on save.
type UserProfile struct {
	Name            string         `json:"name"`
	Sex             string         `json:"sex,omitempty"`
	BirthDate       time.Time      `json:"birthDate"`
	MaritalStatus   string         `json:"maritalStatus,omitempty"`
	Dependents      int            `json:"dependents"`
	AnnualIncome    float64        `json:"annualIncome"`
	MonthlyExpenses float64        `json:"monthlyExpenses"`
	TotalDebt       float64        `json:"totalDebt"`
	Deductions      *TaxDeductions `json:"taxDeductions,omitempty"`
}

// Normalize clamps monetary and count inputs to be non-negative, including
// the nested deductions record when present.
func (p *UserProfile) Normalize() {
	p.AnnualIncome = clampNonNegative(p.AnnualIncome)
	p.MonthlyExpenses = clampNonNegative(p.MonthlyExpenses)
	p.TotalDebt = clampNonNegative(p.TotalDebt)
	if p.Dependents < 0 {
		p.Dependents = 0
	}
	if p.Deductions != nil {
		p.Deductions.Normalize()
	}
}

// DeductionsOrZero returns the deductions record, or a zero-valued one when
// the profile has none. Missing deductions mean "nothing declared".
func (p UserProfile) DeductionsOrZero() TaxDeductions {
	if p.Deductions == nil {
		return TaxDeductions{}
	}
	return *p.Deductions
}
