package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"

	"meetingprep-ai/internal/extraction"
	"meetingprep-ai/internal/output"
	"meetingprep-ai/pkg/logging"
)

// annotate writes a copy of the snapshot with an affordance on every event
func annotate(page, pageURL, out string) (int, error) {
	doc, err := extraction.LoadHTMLFile(page, pageURL)
	if err != nil {
		return 0, err
	}
	added := doc.Annotate()

	html, err := doc.HTML()
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(out, []byte(html), 0o644); err != nil {
		return 0, goerr.Wrap(err, "failed to write annotated page", goerr.V("path", out))
	}
	return added, nil
}

func NewWatchCmd(deps *Dependencies) *cobra.Command {
	var page, pageURL, out string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a saved calendar page and add a brief button to every new event",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			formatter := output.NewFormatter(cmd.OutOrStdout())
			if page == "" {
				return goerr.New("--page is required")
			}
			if out == "" {
				out = strings.TrimSuffix(page, ".html") + ".annotated.html"
			}

			run := func() {
				added, err := annotate(page, pageURL, out)
				if err != nil {
					logging.From(ctx).Warn("annotation failed", "error", err)
					return
				}
				if added > 0 {
					formatter.Success("Added brief buttons to new events, written to " + out)
				}
			}

			watcher := extraction.NewSnapshotWatcher(page, pageURL, deps.Config.WatchInterval)
			observer := extraction.NewObserver(extraction.DefaultSettleDelay, run)

			mutations := make(chan extraction.Mutation)
			go watcher.Run(ctx, mutations)

			formatter.Info("Watching " + page + " (Ctrl+C to stop)")
			observer.Run(ctx, mutations)
			return ignoreCanceled(ctx.Err())
		},
	}

	cmd.Flags().StringVar(&page, "page", "", "saved Google Calendar page (HTML snapshot)")
	cmd.Flags().StringVar(&pageURL, "url", defaultCalendarURL, "URL the snapshot was taken from")
	cmd.Flags().StringVarP(&out, "out", "o", "", "annotated copy (default <page>.annotated.html)")
	return cmd
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
