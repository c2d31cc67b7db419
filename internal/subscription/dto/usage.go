package dto

import "time"

type UsageResponse struct {
	Plan        string     `json:"plan"`
	Status      string     `json:"status"`
	BriefsUsed  int        `json:"briefs_used"`
	BriefsLimit int        `json:"briefs_limit"`
	Unlimited   bool       `json:"unlimited"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`
}

// Remaining returns how many briefs can still be generated this period, or -1 when unlimited
func (u UsageResponse) Remaining() int {
	if u.Unlimited {
		return -1
	}
	if u.BriefsUsed >= u.BriefsLimit {
		return 0
	}
	return u.BriefsLimit - u.BriefsUsed
}
