package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/olivoil/mvu/internal/backend"
	"github.com/olivoil/mvu/internal/config"
	"github.com/olivoil/mvu/internal/journal"
	"github.com/olivoil/mvu/internal/mvu"
	"github.com/olivoil/mvu/internal/terminal"
	"github.com/olivoil/mvu/internal/ui"
)

// Run starts the TUI application and blocks until it quits.
func Run(ctx context.Context, cfg *config.Config) error {
	logger, closeLog, err := openLog(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	theme := ui.DefaultTheme()
	if cfg.UI.Theme != "" {
		if theme, err = ui.LoadTheme(cfg.UI.Theme); err != nil {
			return err
		}
	}

	m, err := newModel(Deps{
		Styles:      ui.NewStyles(theme, cfg.UI.NoColor),
		Fetcher:     backend.NewClient(cfg.Fetch.Timeout),
		Sources:     cfg.Fetch.Sources,
		TailPath:    cfg.Tail.Path,
		StartScreen: cfg.UI.StartScreen,
	})
	if err != nil {
		return err
	}

	drv := terminal.NewDriver(
		terminal.WithAltScreen(cfg.UI.AltScreen),
		terminal.WithMouse(cfg.UI.Mouse),
		terminal.WithDriverLogger(logger),
	)
	opts := []mvu.Option{
		mvu.WithTerminal(drv),
		mvu.WithContext(ctx),
		mvu.WithLogger(logger),
		mvu.WithMaxConcurrentCommands(cfg.Runtime.MaxCommands),
	}

	var rec *journal.Recorder
	if cfg.Journal.Enabled {
		db, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		rec = journal.NewRecorder(db, cfg.UI.StartScreen, logger)
		opts = append(opts, mvu.WithObserver(rec))
	}

	p := mvu.NewProgram(m, opts...)

	// Wire up the file watcher for the tail screen.
	if cfg.Tail.Path != "" {
		w, err := backend.NewWatcher(p, logger)
		if err != nil {
			logger.Warn("file watcher unavailable", "err", err)
		} else {
			defer w.Close()
			if err := w.Follow(cfg.Tail.Path, cfg.Tail.Backlog); err != nil {
				logger.Warn("follow file", "path", cfg.Tail.Path, "err", err)
				p.Send(backend.WatchErrorMsg{Path: cfg.Tail.Path, Err: err})
			}
		}
	}

	_, err = p.Run()
	if rec != nil {
		if cerr := rec.Close(); cerr != nil {
			logger.Error("close journal", "err", cerr)
		}
		logger.Info("run recorded", "run", rec.RunID())
	}
	return err
}

// openLog opens the debug log. Logs never go to the terminal being drawn on.
func openLog(c config.LogConfig) (*slog.Logger, func(), error) {
	level, err := config.ParseLevel(c.Level)
	if err != nil {
		return nil, nil, err
	}
	if c.File == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(c.File), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return newLogger(f, level), func() { f.Close() }, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
