package usecase

import (
	"context"
	"sort"
	"time"

	"meetingprep-ai/internal/meeting/domain"
	"meetingprep-ai/internal/meeting/repository"
	"meetingprep-ai/internal/normalize"
	subdto "meetingprep-ai/internal/subscription/dto"
	subusecase "meetingprep-ai/internal/subscription/usecase"
	"meetingprep-ai/pkg/ai"
	"meetingprep-ai/pkg/fuzzy"
	"meetingprep-ai/pkg/logging"

	"github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
)

const (
	// MsgQuotaExceeded is shown to users who ran out of briefs for the period
	MsgQuotaExceeded = "Brief limit exceeded. Please upgrade your plan."

	searchScanLimit = 200
	notifyTimeout   = 10 * time.Second
)

type meetingUsecase struct {
	repo          repository.MeetingRepository
	subscriptions subusecase.SubscriptionUsecase
	normalizer    *normalize.Normalizer
	listLimit     int

	generator ai.BriefGenerator
	notifier  BriefNotifier
	now       func() time.Time
}

func NewMeetingUsecase(repo repository.MeetingRepository, subscriptions subusecase.SubscriptionUsecase, normalizer *normalize.Normalizer, listLimit int) MeetingUsecase {
	if listLimit <= 0 {
		listLimit = 50
	}
	if normalizer == nil {
		normalizer = normalize.New()
	}
	return &meetingUsecase{
		repo:          repo,
		subscriptions: subscriptions,
		normalizer:    normalizer,
		listLimit:     listLimit,
		now:           time.Now,
	}
}

func (u *meetingUsecase) SetBriefGenerator(generator ai.BriefGenerator) {
	u.generator = generator
}

func (u *meetingUsecase) SetNotifier(notifier BriefNotifier) {
	u.notifier = notifier
}

func toInput(m domain.MeetingRecord) ai.MeetingInput {
	return ai.MeetingInput{
		Title:       m.TitleOrDefault(),
		Date:        m.Date,
		Time:        m.Time,
		Attendees:   []string(m.Attendees),
		Description: m.Description,
		Location:    m.Location,
	}
}

func (u *meetingUsecase) GenerateBrief(ctx context.Context, userID string, meeting domain.MeetingRecord) (*GenerateResult, error) {
	if u.generator == nil {
		return nil, goerr.New("AI service is not configured")
	}

	if userID != "" {
		decision, err := u.subscriptions.Check(userID)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return nil, goerr.Wrap(domain.ErrQuotaExceeded, MsgQuotaExceeded,
				goerr.V("user_id", userID),
				goerr.V("used", decision.Usage.BriefsUsed),
				goerr.V("limit", decision.Usage.BriefsLimit))
		}
	}

	normalized := u.normalizer.Meeting(meeting)
	brief, err := u.generator.GenerateBrief(ctx, toInput(normalized))
	if err != nil {
		return nil, err
	}

	if userID == "" {
		created := u.now()
		return &GenerateResult{
			Brief:   domain.BriefContent{Content: brief.Content, AIModel: brief.Model, CreatedAt: &created},
			Meeting: normalized,
		}, nil
	}

	stored, err := u.persist(userID, normalized, brief)
	if err != nil {
		return nil, err
	}
	normalized.ID = stored.MeetingID

	usage, err := u.subscriptions.RecordBrief(userID)
	if err != nil {
		logging.From(ctx).Error("[Meeting] Failed to record brief usage", "error", err, "user_id", userID)
		usage = nil
	}

	u.notifyAsync(ctx, userID, stored.MeetingID, normalized.TitleOrDefault())

	return &GenerateResult{
		Brief:   stored.Wire(),
		Meeting: normalized,
		Usage:   usage,
	}, nil
}

// persist attaches the brief to the meeting the record names, or to the user's meeting in the
// same slot (title, date, time); otherwise it stores a new meeting
func (u *meetingUsecase) persist(userID string, rec domain.MeetingRecord, brief *ai.Brief) (*domain.Brief, error) {
	ms := brief.Duration.Milliseconds()
	stored := &domain.Brief{
		UserID:           userID,
		Content:          brief.Content,
		BriefType:        "standard",
		AIModel:          brief.Model,
		GenerationTimeMs: &ms,
	}

	existing, err := u.existingMeeting(userID, rec)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		stored.MeetingID = existing.ID
		if err := u.repo.AddBrief(stored); err != nil {
			return nil, goerr.Wrap(err, "failed to save brief", goerr.V("meeting_id", existing.ID))
		}
		return stored, nil
	}

	meeting := &domain.Meeting{
		UserID:      userID,
		Title:       rec.TitleOrDefault(),
		Date:        rec.Date,
		Time:        rec.Time,
		Attendees:   pq.StringArray(rec.Attendees),
		MeetingType: "general",
		Location:    rec.Location,
		Description: rec.Description,
	}
	if err := u.repo.CreateWithBrief(meeting, stored); err != nil {
		return nil, goerr.Wrap(err, "failed to save meeting", goerr.V("user_id", userID))
	}
	return stored, nil
}

func (u *meetingUsecase) existingMeeting(userID string, rec domain.MeetingRecord) (*domain.Meeting, error) {
	if rec.ID != "" {
		existing, err := u.repo.FindByID(userID, rec.ID)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to look up meeting", goerr.V("meeting_id", rec.ID))
		}
		if existing != nil {
			return existing, nil
		}
	}

	existing, err := u.repo.FindBySlot(userID, rec.TitleOrDefault(), rec.Date, rec.Time)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to look up meeting slot",
			goerr.V("user_id", userID), goerr.V("date", rec.Date), goerr.V("time", rec.Time))
	}
	return existing, nil
}

func (u *meetingUsecase) notifyAsync(ctx context.Context, userID, meetingID, title string) {
	if u.notifier == nil {
		return
	}
	logger := logging.From(ctx)
	bg := logging.With(context.WithoutCancel(ctx), logger)

	go func() {
		nctx, cancel := context.WithTimeout(bg, notifyTimeout)
		defer cancel()
		if err := u.notifier.NotifyBriefReady(nctx, userID, meetingID, title); err != nil {
			logger.Warn("[Meeting] Brief notification failed", "error", err, "meeting_id", meetingID)
		}
	}()
}

func (u *meetingUsecase) GetMeetings(ctx context.Context, userID string) ([]domain.BriefRecord, error) {
	items, err := u.repo.ListWithLatestBrief(userID, u.listLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list meetings", goerr.V("user_id", userID))
	}

	out := make([]domain.BriefRecord, 0, len(items))
	for _, item := range items {
		out = append(out, item.Record())
	}
	return out, nil
}

func (u *meetingUsecase) DeleteMeeting(ctx context.Context, userID, meetingID string) error {
	deleted, err := u.repo.Delete(userID, meetingID)
	if err != nil {
		return goerr.Wrap(err, "failed to delete meeting", goerr.V("meeting_id", meetingID))
	}
	if !deleted {
		return goerr.Wrap(domain.ErrNotFound, "Meeting not found", goerr.V("meeting_id", meetingID))
	}
	return nil
}

func (u *meetingUsecase) SearchMeetings(ctx context.Context, userID, query string) ([]domain.BriefRecord, error) {
	items, err := u.repo.ListWithLatestBrief(userID, searchScanLimit)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list meetings", goerr.V("user_id", userID))
	}

	type scored struct {
		rec   domain.BriefRecord
		score float64
	}
	var hits []scored
	for _, item := range items {
		fields := fuzzy.MeetingFields{
			Title:       item.Meeting.Title,
			Attendees:   []string(item.Meeting.Attendees),
			Description: item.Meeting.Description,
		}
		if !fuzzy.MatchMeeting(query, fields) {
			continue
		}
		hits = append(hits, scored{rec: item.Record(), score: fuzzy.Score(query, fields)})
	}

	// Stable so equally relevant meetings keep the newest-first order
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	out := make([]domain.BriefRecord, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.rec)
	}
	return out, nil
}

func (u *meetingUsecase) GetUsage(ctx context.Context, userID string) (*subdto.UsageResponse, error) {
	return u.subscriptions.GetUsage(userID)
}
