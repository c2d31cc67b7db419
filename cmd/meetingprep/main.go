package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/goerr/v2"

	"meetingprep-ai/internal/cli"
	"meetingprep-ai/internal/client"
	"meetingprep-ai/internal/localstore"
	"meetingprep-ai/internal/output"
	"meetingprep-ai/pkg/config"
	"meetingprep-ai/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		formatter := output.NewFormatter(os.Stderr)
		formatter.Error(cli.Message(err))
		logging.Default().Debug("command failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadClient(os.Getenv("MEETINGPREP_CONFIG"))
	if err != nil {
		return goerr.Wrap(err, "loading config")
	}

	logger := logging.New(cfg.LogLevel, os.Stderr)
	logging.SetDefault(logger)

	store, err := localstore.Open(cfg.StorePath())
	if err != nil {
		return goerr.Wrap(err, "opening local cache")
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.With(ctx, logger)

	deps := &cli.Dependencies{
		Config: cfg,
		Store:  store,
		API:    client.New(cfg.APIBase, client.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout})),
	}

	return cli.NewRootCmd(deps).ExecuteContext(ctx)
}
