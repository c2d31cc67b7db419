package extraction

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"meetingprep-ai/pkg/logging"
)

// SnapshotWatcher turns successive saves of a page snapshot into Mutations. Only
// event elements that were not present in the previous snapshot are reported.
type SnapshotWatcher struct {
	path     string
	url      string
	interval time.Duration

	modTime time.Time
	seen    map[string]struct{}
}

// NewSnapshotWatcher polls the snapshot at path every interval
func NewSnapshotWatcher(path, url string, interval time.Duration) *SnapshotWatcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &SnapshotWatcher{
		path:     path,
		url:      url,
		interval: interval,
		seen:     make(map[string]struct{}),
	}
}

// Poll reads the snapshot if it changed and returns the event elements it added
func (w *SnapshotWatcher) Poll() (Mutation, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return Mutation{}, goerr.Wrap(err, "failed to stat page snapshot", goerr.V("path", w.path))
	}
	if !info.ModTime().After(w.modTime) {
		return Mutation{}, nil
	}
	w.modTime = info.ModTime()

	doc, err := LoadHTMLFile(w.path, w.url)
	if err != nil {
		return Mutation{}, err
	}

	var m Mutation
	for _, el := range doc.Find(eventSelector) {
		key := eventKey(el)
		if _, ok := w.seen[key]; ok {
			continue
		}
		w.seen[key] = struct{}{}
		m.Added = append(m.Added, el)
	}
	return m, nil
}

// Run polls until ctx is cancelled, sending non-empty mutations to out
func (w *SnapshotWatcher) Run(ctx context.Context, out chan<- Mutation) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		m, err := w.Poll()
		if err != nil {
			logging.From(ctx).Warn("snapshot poll failed", "error", err)
		} else if len(m.Added) > 0 {
			select {
			case out <- m:
			case <-ctx.Done():
				return
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func eventKey(el Element) string {
	if id, ok := el.Attr("data-eventid"); ok && id != "" {
		return "id:" + id
	}
	return "text:" + strings.TrimSpace(el.Text())
}
