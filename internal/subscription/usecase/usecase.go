package usecase

import (
	"time"

	"meetingprep-ai/internal/subscription/domain"
	subdto "meetingprep-ai/internal/subscription/dto"
	"meetingprep-ai/internal/subscription/repository"

	"github.com/m-mizutani/goerr/v2"
)

// resetBatch bounds how many expired subscriptions one reset pass touches
const resetBatch = 200

// SubscriptionUsecase applies the quota policy on top of stored subscriptions
type SubscriptionUsecase interface {
	// Check loads (or creates) the user's subscription and evaluates the policy
	Check(userID string) (*Decision, error)
	// RecordBrief counts one generated brief and returns the updated usage
	RecordBrief(userID string) (*subdto.UsageResponse, error)
	GetUsage(userID string) (*subdto.UsageResponse, error)
	// ResetExpired starts a new period for every subscription whose period ended
	ResetExpired(now time.Time) (int, error)
}

type subscriptionUsecase struct {
	repo   repository.SubscriptionRepository
	policy Policy
	now    func() time.Time
}

func NewSubscriptionUsecase(repo repository.SubscriptionRepository, freeLimit int) SubscriptionUsecase {
	return &subscriptionUsecase{
		repo:   repo,
		policy: Policy{FreeLimit: freeLimit},
		now:    time.Now,
	}
}

// ensure returns the user's subscription, creating a free one on first use and
// rolling an ended period forward
func (u *subscriptionUsecase) ensure(userID string) (*domain.Subscription, error) {
	sub, err := u.repo.FindByUserID(userID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load subscription", goerr.V("user_id", userID))
	}

	now := u.now()
	if sub == nil {
		sub = &domain.Subscription{
			UserID:             userID,
			Plan:               domain.PlanFree,
			Status:             domain.StatusActive,
			BriefsLimit:        u.policy.limitFor(&domain.Subscription{}),
			CurrentPeriodStart: now,
			CurrentPeriodEnd:   now.AddDate(0, 1, 0),
		}
		if err := u.repo.Create(sub); err != nil {
			return nil, goerr.Wrap(err, "failed to create free subscription", goerr.V("user_id", userID))
		}
		// A concurrent request may have created it first; read back the stored row
		stored, err := u.repo.FindByUserID(userID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to reload subscription", goerr.V("user_id", userID))
		}
		if stored != nil {
			sub = stored
		}
		return sub, nil
	}

	if sub.PeriodEnded(now) {
		sub.AdvancePeriod(now)
		if err := u.repo.Save(sub); err != nil {
			return nil, goerr.Wrap(err, "failed to reset usage period", goerr.V("user_id", userID))
		}
	}
	return sub, nil
}

func (u *subscriptionUsecase) Check(userID string) (*Decision, error) {
	sub, err := u.ensure(userID)
	if err != nil {
		return nil, err
	}
	d := u.policy.Evaluate(sub)
	return &d, nil
}

func (u *subscriptionUsecase) RecordBrief(userID string) (*subdto.UsageResponse, error) {
	if err := u.repo.IncrementUsage(userID); err != nil {
		return nil, goerr.Wrap(err, "failed to record brief usage", goerr.V("user_id", userID))
	}
	return u.GetUsage(userID)
}

func (u *subscriptionUsecase) GetUsage(userID string) (*subdto.UsageResponse, error) {
	sub, err := u.ensure(userID)
	if err != nil {
		return nil, err
	}
	usage := u.policy.Evaluate(sub).Usage
	return &usage, nil
}

func (u *subscriptionUsecase) ResetExpired(now time.Time) (int, error) {
	subs, err := u.repo.FindExpired(now, resetBatch)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to find expired subscriptions")
	}

	count := 0
	for i := range subs {
		sub := &subs[i]
		sub.AdvancePeriod(now)
		if err := u.repo.Save(sub); err != nil {
			return count, goerr.Wrap(err, "failed to reset subscription", goerr.V("user_id", sub.UserID))
		}
		count++
	}
	return count, nil
}
