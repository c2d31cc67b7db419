package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"meetingprep-ai/internal/output"
)

func NewUsageCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Show brief usage for the current period",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())

			s := deps.openSession(cmd.Context())
			user, err := s.requireUser()
			if err != nil {
				return err
			}

			usage, err := deps.API.Usage(cmd.Context(), user.ID)
			if err != nil {
				return err
			}
			formatter.Usage(usage)
			return nil
		},
	}
}

func NewSearchCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search saved meetings by title, attendee or description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())

			s := deps.openSession(cmd.Context())
			user, err := s.requireUser()
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			records, err := deps.API.SearchMeetings(cmd.Context(), user.ID, query)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				formatter.Info(fmt.Sprintf("No meetings match %q", query))
				return nil
			}

			now := deps.now()
			formatter.BriefListHeader(len(records), false)
			for i, rec := range records {
				formatter.BriefListItem(i+1, rec, now)
			}
			return nil
		},
	}
}
