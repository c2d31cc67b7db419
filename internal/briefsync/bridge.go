// Package briefsync reconciles the backend's brief list with the local cache.
package briefsync

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"meetingprep-ai/internal/localstore"
	"meetingprep-ai/internal/meeting/domain"
	"meetingprep-ai/pkg/logging"
)

// RemoteStore is the backend side of the bridge
type RemoteStore interface {
	GetMeetings(ctx context.Context, userID string) ([]domain.BriefRecord, error)
	DeleteMeeting(ctx context.Context, meetingID, userID string) error
}

// LocalStore is the cache side of the bridge
type LocalStore interface {
	All(ctx context.Context) ([]localstore.Entry, error)
	Set(ctx context.Context, key string, v any) error
	Remove(ctx context.Context, keys ...string) error
	NewSlotKey(t time.Time) string
}

// Source tells where a listing came from
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// ListResult is a brief listing. FallbackReason is set when Source is SourceLocal.
type ListResult struct {
	Records        []domain.BriefRecord
	Source         Source
	FallbackReason error
}

// Bridge keeps the in-memory brief list shown to the user
type Bridge struct {
	remote RemoteStore
	local  LocalStore
	userID string
	now    func() time.Time

	mu      sync.Mutex
	records []domain.BriefRecord
}

// NewBridge creates a bridge for userID. An empty userID means nobody is signed in and
// listings come from the cache only.
func NewBridge(remote RemoteStore, local LocalStore, userID string) *Bridge {
	return &Bridge{
		remote: remote,
		local:  local,
		userID: userID,
		now:    time.Now,
	}
}

// SetClock replaces the clock used to stamp generated briefs
func (b *Bridge) SetClock(now func() time.Time) {
	b.now = now
}

// Records returns a copy of the current in-memory list
func (b *Bridge) Records() []domain.BriefRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.records)
}

// List loads briefs from the backend, falling back to the local cache on any failure
func (b *Bridge) List(ctx context.Context) (*ListResult, error) {
	logger := logging.From(ctx)

	var reason error
	if b.userID == "" {
		reason = goerr.Wrap(domain.ErrUnauthorized, "not signed in")
	} else {
		records, err := b.remote.GetMeetings(ctx, b.userID)
		if err == nil {
			b.setRecords(records)
			return &ListResult{Records: slices.Clone(records), Source: SourceRemote}, nil
		}
		reason = err
	}

	logger.Info("listing briefs from local cache", "reason", reason)
	records, err := b.LocalRecords(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "remote and local listing both failed", goerr.V("remote_error", reason.Error()))
	}
	b.setRecords(records)
	return &ListResult{Records: slices.Clone(records), Source: SourceLocal, FallbackReason: reason}, nil
}

// LocalRecords rebuilds a listing from every cached brief slot plus the latest brief,
// newest first. Entries without a meeting are skipped.
func (b *Bridge) LocalRecords(ctx context.Context) ([]domain.BriefRecord, error) {
	entries, err := b.local.All(ctx)
	if err != nil {
		return nil, err
	}

	var records []domain.BriefRecord
	for _, e := range entries {
		if !isBriefKey(e.Key) {
			continue
		}
		rec, ok := decodeCached(e.Value)
		if !ok {
			logging.From(ctx).Debug("skipping malformed cached brief", "key", e.Key)
			continue
		}
		records = append(records, rec)
	}

	slices.SortStableFunc(records, func(a, c domain.BriefRecord) int {
		return c.GeneratedAt.Compare(a.GeneratedAt)
	})
	return records, nil
}

// Delete removes a brief remotely, then from the in-memory list and the cache. Records
// that were never saved remotely are refused without any network call.
func (b *Bridge) Delete(ctx context.Context, rec domain.BriefRecord) error {
	id := rec.RemoteID()
	if id == "" {
		return goerr.Wrap(domain.ErrNoRemoteID, "delete refused", goerr.V("title", rec.Meeting.Title))
	}

	if err := b.remote.DeleteMeeting(ctx, id, b.userID); err != nil {
		return goerr.Wrap(err, "failed to delete meeting", goerr.V("meeting_id", id))
	}

	b.mu.Lock()
	b.records = slices.DeleteFunc(b.records, func(r domain.BriefRecord) bool {
		return r.RemoteID() == id
	})
	b.mu.Unlock()

	return b.dropCached(ctx, id)
}

func (b *Bridge) dropCached(ctx context.Context, id string) error {
	entries, err := b.local.All(ctx)
	if err != nil {
		return err
	}

	var stale []string
	for _, e := range entries {
		if !isBriefKey(e.Key) {
			continue
		}
		if rec, ok := decodeCached(e.Value); ok && rec.RemoteID() == id {
			stale = append(stale, e.Key)
		}
	}
	return b.local.Remove(ctx, stale...)
}

// PersistGenerated caches a freshly generated brief as both the latest brief and a new
// slot. It returns the stored record and its slot key.
func (b *Bridge) PersistGenerated(ctx context.Context, meeting domain.MeetingRecord, brief domain.BriefContent, meetingID string) (domain.BriefRecord, string, error) {
	now := b.now()
	rec := domain.BriefRecord{
		Meeting:     meeting,
		Brief:       brief,
		GeneratedAt: now.UTC(),
		MeetingID:   meetingID,
	}

	if err := b.local.Set(ctx, localstore.KeyLatestBrief, rec); err != nil {
		return domain.BriefRecord{}, "", err
	}
	slot := b.local.NewSlotKey(now)
	if err := b.local.Set(ctx, slot, rec); err != nil {
		return domain.BriefRecord{}, "", err
	}
	return rec, slot, nil
}

func (b *Bridge) setRecords(records []domain.BriefRecord) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = slices.Clone(records)
}

func isBriefKey(key string) bool {
	return key == localstore.KeyLatestBrief || strings.HasPrefix(key, localstore.SlotPrefix)
}

func decodeCached(raw json.RawMessage) (domain.BriefRecord, bool) {
	var probe struct {
		Meeting *domain.MeetingRecord `json:"meeting"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil || probe.Meeting == nil {
		return domain.BriefRecord{}, false
	}

	var rec domain.BriefRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.BriefRecord{}, false
	}
	return rec, true
}
