package cli

import (
	"os"

	"github.com/spf13/cobra"

	"meetingprep-ai/internal/output"
	"meetingprep-ai/internal/popup"
)

func NewLoginCmd(deps *Dependencies) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the MeetingPrep backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())
			if password == "" {
				password = os.Getenv("MEETINGPREP_PASSWORD")
			}

			s := deps.openSession(cmd.Context())
			state, err := s.controller.Login(cmd.Context(), email, password)
			formatter.Print(popup.View(state))
			return err
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (or MEETINGPREP_PASSWORD)")

	return cmd
}

func NewLogoutCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the signed-in session; cached briefs are kept",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())

			s := deps.openSession(cmd.Context())
			state, err := s.controller.Logout(cmd.Context())
			if err != nil {
				return err
			}
			formatter.Print(popup.View(state))
			return nil
		},
	}
}
