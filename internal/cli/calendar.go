package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"meetingprep-ai/internal/calendar"
	"meetingprep-ai/internal/meeting/domain"
	"meetingprep-ai/internal/output"
)

// upcoming lists meetings from the Calendar API starting within window
func (d *Dependencies) upcoming(ctx context.Context, window time.Duration, limit int64) ([]domain.MeetingRecord, error) {
	if d.Config.CalendarToken == "" {
		return nil, goerr.New("calendar_token is not configured")
	}
	src, err := calendar.NewSource(ctx, d.Config.CalendarToken, d.Config.CalendarID)
	if err != nil {
		return nil, err
	}
	return src.Upcoming(ctx, d.now(), window, limit)
}

func NewCalendarCmd(deps *Dependencies) *cobra.Command {
	var within time.Duration
	var limit int64

	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "List upcoming meetings from the Google Calendar API",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())

			meetings, err := deps.upcoming(cmd.Context(), within, limit)
			if err != nil {
				return err
			}
			if len(meetings) == 0 {
				formatter.Info("No upcoming meetings")
				return nil
			}

			formatter.Print("📅 Upcoming meetings:\n\n")
			for i, m := range meetings {
				formatter.MeetingListItem(i+1, m)
			}
			formatter.Print("\nRun `meetingprep brief --calendar N` to prepare for one.\n")
			return nil
		},
	}

	cmd.Flags().DurationVar(&within, "within", 24*time.Hour, "how far ahead to look")
	cmd.Flags().Int64Var(&limit, "max", 10, "maximum number of meetings")
	return cmd
}
