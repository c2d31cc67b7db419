package cli

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"meetingprep-ai/internal/briefsync"
	"meetingprep-ai/internal/output"
	"meetingprep-ai/internal/render"
)

func NewListCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List generated briefs",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())

			s := deps.openSession(cmd.Context())
			res, err := s.bridge.List(cmd.Context())
			if err != nil {
				return err
			}

			local := res.Source == briefsync.SourceLocal
			if local && s.state.Phase.Authenticated() {
				formatter.Warning("Could not load briefs from the server: " + Message(res.FallbackReason))
			}
			if len(res.Records) == 0 {
				formatter.Info("No briefs yet. Run `meetingprep brief` to generate one.")
				return nil
			}

			now := deps.now()
			formatter.BriefListHeader(len(res.Records), local)
			for i, rec := range res.Records {
				formatter.BriefListItem(i+1, rec, now)
			}
			return nil
		},
	}
}

func NewViewCmd(deps *Dependencies) *cobra.Command {
	var htmlOut string

	cmd := &cobra.Command{
		Use:   "view <number|meeting-id>",
		Short: "Show one brief",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())

			s := deps.openSession(cmd.Context())
			res, err := s.bridge.List(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := resolve(res.Records, args[0])
			if err != nil {
				return err
			}

			if htmlOut == "" {
				formatter.Print(render.PlainText(rec))
				return nil
			}

			page, err := render.HTML(rec.Brief.Text())
			if err != nil {
				return err
			}
			if err := os.WriteFile(htmlOut, []byte(page), 0o644); err != nil {
				return goerr.Wrap(err, "failed to write brief", goerr.V("path", htmlOut))
			}
			formatter.Saved(htmlOut)
			return nil
		},
	}

	cmd.Flags().StringVar(&htmlOut, "html", "", "write the brief as HTML to this file instead of printing it")
	return cmd
}

func NewDeleteCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <number|meeting-id>",
		Short: "Delete a saved brief and its meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())

			s := deps.openSession(cmd.Context())
			res, err := s.bridge.List(cmd.Context())
			if err != nil {
				return err
			}
			rec, err := resolve(res.Records, args[0])
			if err != nil {
				return err
			}

			if err := s.bridge.Delete(cmd.Context(), rec); err != nil {
				return err
			}
			formatter.Success("Brief deleted: " + rec.Meeting.TitleOrDefault())
			return nil
		},
	}
}

func NewCopyAllCmd(deps *Dependencies) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "copy-all",
		Short: "Export every brief as plain text",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())

			s := deps.openSession(cmd.Context())
			res, err := s.bridge.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(res.Records) == 0 {
				formatter.Info("No briefs to export")
				return nil
			}

			text := render.CopyAll(res.Records, deps.now())
			if out == "" {
				formatter.Print(text)
				return nil
			}
			if err := os.WriteFile(out, []byte(text), 0o644); err != nil {
				return goerr.Wrap(err, "failed to write export", goerr.V("path", out))
			}
			formatter.Saved(out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the export to this file")
	return cmd
}
