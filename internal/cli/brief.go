package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	analyticsdto "meetingprep-ai/internal/analytics/dto"
	"meetingprep-ai/internal/meeting/domain"
	"meetingprep-ai/internal/messaging"
	"meetingprep-ai/internal/output"
	"meetingprep-ai/internal/popup"
	"meetingprep-ai/internal/render"
	"meetingprep-ai/pkg/logging"
)

// meetingFlags selects where the meeting comes from: a page snapshot, typed fields,
// or the Calendar API
type meetingFlags struct {
	page        string
	url         string
	title       string
	date        string
	time        string
	attendees   []string
	description string
	calendarPos int
	event       string
}

func (f *meetingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.page, "page", "", "saved Google Calendar page (HTML snapshot)")
	cmd.Flags().StringVar(&f.url, "url", defaultCalendarURL, "URL the snapshot was taken from")
	cmd.Flags().StringVar(&f.title, "title", "", "meeting title (skips page detection)")
	cmd.Flags().StringVar(&f.date, "date", "", "meeting date")
	cmd.Flags().StringVar(&f.time, "time", "", "meeting time")
	cmd.Flags().StringSliceVar(&f.attendees, "attendee", nil, "attendee name or email (repeatable)")
	cmd.Flags().StringVar(&f.description, "description", "", "meeting description")
	cmd.Flags().IntVar(&f.calendarPos, "calendar", 0, "use the Nth upcoming Calendar API meeting")
	cmd.Flags().StringVar(&f.event, "event", "", "click the brief button of this event id on --page")
}

func (f *meetingFlags) manual() bool {
	return f.title != "" || f.date != "" || f.time != "" || len(f.attendees) > 0 || f.description != ""
}

// load puts the selected meeting into the session's controller
func (d *Dependencies) loadMeeting(ctx context.Context, s *session, f *meetingFlags) (popup.State, error) {
	switch {
	case f.calendarPos > 0:
		meetings, err := d.upcoming(ctx, 24*time.Hour, int64(f.calendarPos))
		if err != nil {
			return s.controller.State(), err
		}
		if len(meetings) < f.calendarPos {
			return s.controller.State(), goerr.Wrap(domain.ErrMeetingNotFound, "not enough upcoming meetings", goerr.V("found", len(meetings)))
		}
		return s.controller.SetMeeting(meetings[f.calendarPos-1]), nil

	case f.manual():
		return s.controller.SetMeeting(domain.MeetingRecord{
			Title:       f.title,
			Date:        f.date,
			Time:        f.time,
			Attendees:   domain.AttendeeList(f.attendees),
			Description: f.description,
		}), nil

	case f.event != "":
		if f.page == "" {
			return s.controller.State(), goerr.New("--event needs --page")
		}
		agent := d.attachPage(s, f.page, f.url)
		s.bus.Handle(messaging.ActionOpenPopup, s.controller.OpenPopupHandler(f.url))
		if _, err := agent.Activate(ctx, f.event); err != nil {
			return s.controller.State(), err
		}
		return s.controller.State(), nil

	default:
		if f.page != "" {
			d.attachPage(s, f.page, f.url)
		}
		return s.controller.LoadMeeting(ctx, f.url), nil
	}
}

func NewDetectCmd(deps *Dependencies) *cobra.Command {
	var flags meetingFlags

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Show the meeting that would be sent for a brief",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())

			s := deps.openSession(cmd.Context())
			if _, err := s.requireUser(); err != nil {
				return err
			}
			state, err := deps.loadMeeting(cmd.Context(), s, &flags)
			if err != nil {
				return err
			}
			formatter.Print(popup.View(state))
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func NewBriefCmd(deps *Dependencies) *cobra.Command {
	var flags meetingFlags
	var htmlOut string

	cmd := &cobra.Command{
		Use:   "brief",
		Short: "Generate an AI brief for a meeting",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			formatter := output.NewFormatter(cmd.OutOrStdout())

			s := deps.openSession(ctx)
			user, err := s.requireUser()
			if err != nil {
				return err
			}

			state, err := deps.loadMeeting(ctx, s, &flags)
			if err != nil {
				return err
			}
			if state.Phase != popup.PhaseMeetingDetected {
				formatter.Print(popup.View(state))
				return goerr.Wrap(domain.ErrMeetingNotFound, popup.MsgNoMeeting)
			}

			formatter.Generating()
			state, err = s.controller.GenerateBrief(ctx)
			formatter.Print(popup.View(state))
			if err != nil {
				return err
			}

			deps.track(ctx, user.ID, user.Email, "brief_generated", map[string]interface{}{
				"source": string(state.Source),
			})

			if htmlOut != "" && state.Brief != nil {
				page, err := render.HTML(state.Brief.Brief.Text())
				if err != nil {
					return err
				}
				if err := os.WriteFile(htmlOut, []byte(page), 0o644); err != nil {
					return goerr.Wrap(err, "failed to write brief", goerr.V("path", htmlOut))
				}
				formatter.Saved(htmlOut)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&htmlOut, "html", "", "also write the brief as HTML to this file")
	return cmd
}

// track reports an analytics event; failures only reach the log
func (d *Dependencies) track(ctx context.Context, userID, email, eventType string, metadata map[string]interface{}) {
	err := d.API.TrackEvent(ctx, analyticsdto.TrackEventRequest{
		EventType: eventType,
		UserID:    userID,
		UserEmail: strings.TrimSpace(email),
		Metadata:  metadata,
	})
	if err != nil {
		logging.From(ctx).Debug("analytics event not sent", "event", eventType, "error", err)
	}
}
