package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"meetingprep-ai/internal/client"
	"meetingprep-ai/internal/localstore"
	"meetingprep-ai/internal/meeting/domain"
	"meetingprep-ai/internal/popup"
	"meetingprep-ai/pkg/config"
)

const defaultCalendarURL = "https://calendar.google.com/calendar/r"

type Dependencies struct {
	Config *config.ClientConfig
	Store  *localstore.Store
	API    *client.Client
	Now    func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "meetingprep",
		Short:         "Generate AI briefs for your calendar meetings",
		Long:          "A CLI that reads meetings from Google Calendar pages or the Calendar API, asks the MeetingPrep AI backend for a brief, and keeps generated briefs in a local cache.",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(NewLoginCmd(deps))
	rootCmd.AddCommand(NewLogoutCmd(deps))
	rootCmd.AddCommand(NewDetectCmd(deps))
	rootCmd.AddCommand(NewBriefCmd(deps))
	rootCmd.AddCommand(NewListCmd(deps))
	rootCmd.AddCommand(NewViewCmd(deps))
	rootCmd.AddCommand(NewDeleteCmd(deps))
	rootCmd.AddCommand(NewCopyAllCmd(deps))
	rootCmd.AddCommand(NewWatchCmd(deps))
	rootCmd.AddCommand(NewUsageCmd(deps))
	rootCmd.AddCommand(NewSearchCmd(deps))
	rootCmd.AddCommand(NewCalendarCmd(deps))

	return rootCmd
}

// Message maps a command failure to what the user is told
func Message(err error) string {
	switch {
	case errors.Is(err, domain.ErrNoRemoteID):
		return domain.ErrNoRemoteID.Error()
	case errors.Is(err, popup.ErrNotSignedIn):
		return "Not signed in. Run `meetingprep login` first."
	case errors.Is(err, domain.ErrUnauthorized):
		return popup.MsgSignInNeeded
	case errors.Is(err, domain.ErrQuotaExceeded):
		return popup.MsgUpgradeNeeded
	case errors.Is(err, domain.ErrNetwork):
		return "Could not reach the MeetingPrep server. Check api_base in your config."
	default:
		return err.Error()
	}
}
