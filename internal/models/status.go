package models

import (
	"math"
	"time"
)

// PolicyStatus is the derived lifecycle state of a policy.
type PolicyStatus string

const (
	StatusActive      PolicyStatus = "active"
	StatusGracePeriod PolicyStatus = "grace_period"
	StatusTerminated  PolicyStatus = "terminated"
)

// GracePeriodDays is the cure window after a missed due date during which a
// lapsed policy is still recoverable.
const GracePeriodDays = 30

// DisplayName returns the human-facing label for the status.
func (s PolicyStatus) DisplayName() string {
	switch s {
	case StatusActive:
		return "Active"
	case StatusGracePeriod:
		return "Grace Period"
	case StatusTerminated:
		return "Terminated"
	default:
		return string(s)
	}
}

// ClassifyStatus derives a policy's lifecycle state from its next due date
// and a reference date. Both dates are normalized to midnight in their own
// location before comparison so time-of-day never affects the result.
//
// A due date of today (or later) is Active. A due date up to GracePeriodDays
// whole days in the past, inclusive, is GracePeriod. Anything older is
// Terminated. The day difference is the ceiling of the elapsed time divided
// by 24h, so a DST-shortened day still counts as a whole day.
func ClassifyStatus(dueDate, today time.Time) PolicyStatus {
	due := startOfDay(dueDate)
	now := startOfDay(today)

	if !now.After(due) {
		return StatusActive
	}

	diffDays := int(math.Ceil(now.Sub(due).Hours() / 24))
	if diffDays <= GracePeriodDays {
		return StatusGracePeriod
	}
	return StatusTerminated
}

// startOfDay strips the time-of-day component, keeping the location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
