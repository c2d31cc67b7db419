package usecase

import (
	"meetingprep-ai/internal/subscription/domain"
	subdto "meetingprep-ai/internal/subscription/dto"
)

// DefaultFreeLimit is the brief allowance of a free plan per period
const DefaultFreeLimit = 20

// Decision is the outcome of a quota check
type Decision struct {
	Allowed bool
	Usage   subdto.UsageResponse
}

// Policy decides whether a subscription may generate another brief.
// Active paid plans are unlimited; everything else is capped by its brief limit.
type Policy struct {
	FreeLimit int
}

func (p Policy) limitFor(sub *domain.Subscription) int {
	if sub.BriefsLimit > 0 {
		return sub.BriefsLimit
	}
	if p.FreeLimit > 0 {
		return p.FreeLimit
	}
	return DefaultFreeLimit
}

// Evaluate is the single quota decision used by brief generation
func (p Policy) Evaluate(sub *domain.Subscription) Decision {
	limit := p.limitFor(sub)
	usage := subdto.UsageResponse{
		Plan:        string(sub.Plan),
		Status:      string(sub.Status),
		BriefsUsed:  sub.BriefsUsedThisMonth,
		BriefsLimit: limit,
	}
	if !sub.CurrentPeriodEnd.IsZero() {
		end := sub.CurrentPeriodEnd
		usage.PeriodEnd = &end
	}

	if sub.IsPaid() && sub.IsActive() {
		usage.Unlimited = true
		return Decision{Allowed: true, Usage: usage}
	}

	return Decision{
		Allowed: sub.BriefsUsedThisMonth < limit,
		Usage:   usage,
	}
}
