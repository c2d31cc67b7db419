package domain

import "time"

type Plan string

const (
	PlanFree Plan = "free"
	PlanPro  Plan = "pro"
	PlanTeam Plan = "team"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusCanceled Status = "canceled"
	StatusPastDue  Status = "past_due"
)

// Subscription tracks a user's plan and brief usage for the current billing period
type Subscription struct {
	ID                  string    `json:"id" gorm:"primaryKey"`
	UserID              string    `json:"user_id" gorm:"uniqueIndex;not null"`
	Plan                Plan      `json:"plan" gorm:"default:free;not null"`
	Status              Status    `json:"status" gorm:"default:active;not null"`
	BriefsLimit         int       `json:"briefs_limit" gorm:"not null"`
	BriefsUsedThisMonth int       `json:"briefs_used_this_month" gorm:"default:0;not null"`
	CurrentPeriodStart  time.Time `json:"current_period_start"`
	CurrentPeriodEnd    time.Time `json:"current_period_end" gorm:"index"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Subscription) TableName() string {
	return "user_subscriptions"
}

// IsPaid reports whether the plan is a paid one
func (s *Subscription) IsPaid() bool {
	return s.Plan == PlanPro || s.Plan == PlanTeam
}

// IsActive reports whether the subscription is in good standing
func (s *Subscription) IsActive() bool {
	return s.Status == StatusActive
}

// PeriodEnded reports whether the usage period is over at now
func (s *Subscription) PeriodEnded(now time.Time) bool {
	return !s.CurrentPeriodEnd.IsZero() && !now.Before(s.CurrentPeriodEnd)
}

// AdvancePeriod resets usage and moves the period forward one month at a time until it covers now
func (s *Subscription) AdvancePeriod(now time.Time) {
	if s.CurrentPeriodEnd.IsZero() {
		s.CurrentPeriodStart = now
		s.CurrentPeriodEnd = now.AddDate(0, 1, 0)
	}
	for !now.Before(s.CurrentPeriodEnd) {
		s.CurrentPeriodStart = s.CurrentPeriodEnd
		s.CurrentPeriodEnd = s.CurrentPeriodEnd.AddDate(0, 1, 0)
	}
	s.BriefsUsedThisMonth = 0
}
