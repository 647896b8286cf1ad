package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"mclocale/internal/acquire"
	"mclocale/internal/bedrock"
	"mclocale/internal/catalog"
	"mclocale/internal/config"
	"mclocale/internal/history"
	"mclocale/internal/httpfetch"
	"mclocale/internal/java"
	"mclocale/internal/logging"
	"mclocale/internal/merge"
	"mclocale/internal/preflight"
	"mclocale/internal/signal"
	"mclocale/internal/state"
	"mclocale/internal/workflow"
)

// session holds the collaborators of one pipeline invocation.
type session struct {
	cfg     *config.Config
	fs      afero.Fs
	runID   string
	logger  *slog.Logger
	logPath string
	http    *httpfetch.Client
	history *history.Store
	store   *state.Store
	runner  *workflow.Runner
}

func (c *commandContext) openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	logger, logPath, err := logging.NewFromConfig(cfg, runID)
	if err != nil {
		return nil, err
	}
	logging.PruneRunLogs(logger, cfg.Paths.LogDir, cfg.Logging.RetentionDays, logPath)

	fs := afero.NewOsFs()
	s := &session{
		cfg:     cfg,
		fs:      fs,
		runID:   runID,
		logger:  logger,
		logPath: logPath,
		store:   state.NewStore(fs, cfg.Paths.StateFile, logger),
	}
	s.http = httpfetch.New(httpfetch.Options{
		Timeout:    cfg.HTTPTimeout(),
		UserAgent:  cfg.Network.UserAgent,
		Attempts:   cfg.Network.DownloadAttempts,
		RetryDelay: cfg.DownloadRetryDelay(),
		Fs:         fs,
		Logger:     logger,
		Progress:   progressFor(cmd.ErrOrStderr(), logger),
	})

	opts := workflow.Options{
		Store:       s.store,
		LockPath:    cfg.LockPath(),
		MaxAttempts: cfg.Workflow.MaxAttempts,
		RetryDelay:  cfg.WorkflowRetryDelay(),
		Preflight: func(ctx context.Context) error {
			return preflight.Err(preflight.RunAll(ctx, cfg))
		},
		Signals: map[string]workflow.Emitter{
			bedrock.Name: signal.NewSink(fs, cfg.SignalPath(bedrock.Name)),
			java.Name:    signal.NewSink(fs, cfg.SignalPath(java.Name)),
		},
		RunID:  runID,
		Logger: logger,
	}
	store, err := history.Open(cmd.Context(), cfg.Paths.HistoryDB)
	if err != nil {
		logging.WarnWithContext(logger, "run history unavailable", "history_open_failed",
			logging.String("path", cfg.Paths.HistoryDB),
			logging.Error(err),
			logging.String(logging.FieldImpact, "runs are not recorded and backfill cannot skip finished versions"),
		)
	} else {
		s.history = store
		opts.Ledger = store
	}
	s.runner = workflow.NewRunner(opts)
	return s, nil
}

func (s *session) Close() {
	if s.history != nil {
		_ = s.history.Close()
	}
}

func (s *session) acquirer() *acquire.Acquirer {
	return acquire.New(s.fs, s.http, s.logger)
}

func (s *session) bedrockEdition() *bedrock.Edition {
	return bedrock.New(
		bedrock.SettingsFromConfig(s.cfg),
		s.fs,
		catalog.NewClient(s.http),
		s.acquirer(),
		bedrock.NewCommandUnpacker(s.cfg.Bedrock.UnpackCommand, s.logger),
		s.logger,
	)
}

func (s *session) javaEdition() *java.Edition {
	return java.New(java.SettingsFromConfig(s.cfg), s.fs, s.http, s.acquirer(), s.logger)
}

func (s *session) merge(ctx context.Context) (merge.Summary, error) {
	merger := merge.NewMerger(s.fs, s.cfg.Bedrock.MergeOrder, s.logger)
	return merger.MergeTree(ctx, s.cfg.BedrockExtractedDir(), s.cfg.BedrockMergedDir())
}

// progressFor draws a progress bar on terminals and falls back to sampled
// log lines otherwise.
func progressFor(w io.Writer, logger *slog.Logger) httpfetch.Progress {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return httpfetch.NewBarProgress(w)
	}
	return httpfetch.NewLogProgress(logger)
}

// readCatalogFile returns the content of an optional local catalog document.
func readCatalogFile(fs afero.Fs, path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	return afero.ReadFile(fs, expanded)
}
