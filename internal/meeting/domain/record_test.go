package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"meetingprep-ai/internal/meeting/domain"
)

func TestAttendeeListDecoding(t *testing.T) {
	cases := map[string][]string{
		`{"attendees":["a@x.io","Bo"]}`: {"a@x.io", "Bo"},
		`{"attendees":"a@x.io"}`:        {"a@x.io"},
		`{"attendees":""}`:              {},
		`{"attendees":[1,"Bo",null]}`:   {"Bo"},
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			var m domain.MeetingRecord
			gt.NoError(t, json.Unmarshal([]byte(in), &m))
			gt.Equal(t, []string(m.Attendees), want)
		})
	}
}

func TestAttendeeListEncodesNilAsEmpty(t *testing.T) {
	out, err := json.Marshal(domain.MeetingRecord{Title: "x"})
	gt.NoError(t, err)
	gt.S(t, string(out)).Contains(`"attendees":[]`)
}

func TestBriefContentDecodesBothShapes(t *testing.T) {
	var fromString, fromObject domain.BriefRecord
	gt.NoError(t, json.Unmarshal([]byte(`{"meeting":{},"brief":"plain"}`), &fromString))
	gt.NoError(t, json.Unmarshal([]byte(`{"meeting":{},"brief":{"id":"b1","content":"rich"}}`), &fromObject))

	gt.Equal(t, fromString.Brief.Text(), "plain")
	gt.Equal(t, fromObject.Brief.Text(), "rich")
	gt.Equal(t, fromObject.Brief.ID, "b1")
}

func TestBriefRecordTolerantGeneratedAt(t *testing.T) {
	var rec domain.BriefRecord
	gt.NoError(t, json.Unmarshal([]byte(`{"meeting":{"title":"a"},"brief":"b","generated_at":"yesterday"}`), &rec))
	gt.True(t, rec.GeneratedAt.IsZero())

	gt.NoError(t, json.Unmarshal([]byte(`{"meeting":{"title":"a"},"generated_at":"2025-10-23T09:00:00Z"}`), &rec))
	gt.Equal(t, rec.GeneratedAt, time.Date(2025, 10, 23, 9, 0, 0, 0, time.UTC))
}

func TestRemoteID(t *testing.T) {
	gt.Equal(t, domain.BriefRecord{MeetingID: "m1", Meeting: domain.MeetingRecord{ID: "m2"}}.RemoteID(), "m1")
	gt.Equal(t, domain.BriefRecord{Meeting: domain.MeetingRecord{ID: "m2"}}.RemoteID(), "m2")
	gt.False(t, domain.BriefRecord{}.HasRemoteID())
}

func TestIsUpcoming(t *testing.T) {
	now := time.Date(2025, 10, 23, 18, 0, 0, 0, time.UTC)

	gt.True(t, domain.BriefRecord{Meeting: domain.MeetingRecord{Date: "2025-10-23"}}.IsUpcoming(now))
	gt.False(t, domain.BriefRecord{Meeting: domain.MeetingRecord{Date: "2025-10-22"}}.IsUpcoming(now))
	gt.True(t, domain.BriefRecord{Meeting: domain.MeetingRecord{Date: "soon"}}.IsUpcoming(now))
}
