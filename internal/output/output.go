package output

import (
	"fmt"
	"io"
	"time"

	"meetingprep-ai/internal/meeting/domain"
	subdto "meetingprep-ai/internal/subscription/dto"
)

type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Print(s string) {
	fmt.Fprint(f.w, s)
}

func (f *Formatter) Generating() {
	fmt.Fprintf(f.w, "🤖 Generating AI brief...\n")
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) Info(msg string) {
	fmt.Fprintf(f.w, "ℹ️  %s\n", msg)
}

func (f *Formatter) Success(msg string) {
	fmt.Fprintf(f.w, "✅ %s\n", msg)
}

func (f *Formatter) Warning(msg string) {
	fmt.Fprintf(f.w, "⚠️  %s\n", msg)
}

func (f *Formatter) Saved(path string) {
	fmt.Fprintf(f.w, "📁 Saved: %s\n", path)
}

func (f *Formatter) BriefListHeader(count int, local bool) {
	if local {
		fmt.Fprintf(f.w, "📚 Briefs (%d, from local cache):\n\n", count)
		return
	}
	fmt.Fprintf(f.w, "📚 Briefs (%d):\n\n", count)
}

// BriefListItem prints one numbered row. Upcoming meetings are marked with 📅.
func (f *Formatter) BriefListItem(n int, rec domain.BriefRecord, now time.Time) {
	status := "✔️ "
	if rec.IsUpcoming(now) {
		status = "📅"
	}
	date := rec.Meeting.Date
	if date == "" {
		date = domain.DefaultViewerDate
	}
	id := ""
	if rec.HasRemoteID() {
		id = "  [" + rec.RemoteID() + "]"
	}
	fmt.Fprintf(f.w, "  %2d. %s %s  %s%s\n", n, status, date, rec.Meeting.TitleOrDefault(), id)
}

func (f *Formatter) MeetingListItem(n int, m domain.MeetingRecord) {
	fmt.Fprintf(f.w, "  %2d. %s %s  %s\n", n, m.Date, m.Time, m.TitleOrDefault())
}

func (f *Formatter) Usage(u *subdto.UsageResponse) {
	fmt.Fprintf(f.w, "📊 Plan: %s (%s)\n", u.Plan, u.Status)
	if u.Unlimited {
		fmt.Fprintf(f.w, "   Briefs this period: %d (unlimited)\n", u.BriefsUsed)
	} else {
		fmt.Fprintf(f.w, "   Briefs this period: %d of %d (%d left)\n", u.BriefsUsed, u.BriefsLimit, u.Remaining())
	}
	if u.PeriodEnd != nil {
		fmt.Fprintf(f.w, "   Resets: %s\n", u.PeriodEnd.Local().Format("Mon 2 Jan 2006"))
	}
}
