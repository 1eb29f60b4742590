package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/netajam/filedress/cli"
	"github.com/netajam/filedress/filedress"
	"github.com/netajam/filedress/internal/config"
	"github.com/netajam/filedress/internal/logging"
	"github.com/netajam/filedress/internal/state"
	"github.com/netajam/filedress/internal/tui"
	"github.com/netajam/filedress/internal/ui"
	"github.com/netajam/filedress/internal/update"
	"github.com/netajam/filedress/model"
)

var version = "0.1.0-dev"

// Overridden in tests.
var (
	releaseBaseURL string
	stateDir       string
)

// errFailed signals that some files failed; they were already reported.
var errFailed = errors.New("some files could not be processed")

func main() {
	cfg := &cli.Config{}
	if err := newRootCmd(cfg).Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			ui.Error("Error: %v", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(cfg *cli.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "filedress",
		Short: "Add path headers, strip comments and bundle source files",
		Long: `filedress prepares source trees for sharing: it writes a
"Path: ..." header comment at the top of each file, removes comments
without touching string literals, bundles files into one text and
creates directory trees from an indented outline.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.BindGlobalFlags(rootCmd.PersistentFlags(), cfg)

	fileCommands := []struct {
		command cli.Command
		short   string
	}{
		{cli.Add, "Add a path header to each file"},
		{cli.Remove, "Remove the path header from each file"},
		{cli.Clean, "Remove all comments, keeping path headers"},
		{cli.Copy, "Copy the content of each file to the clipboard or a file"},
	}
	for _, fc := range fileCommands {
		command := fc.command
		cmd := &cobra.Command{
			Use:   string(command) + " <directory>",
			Short: fc.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg.Command = command
				cfg.Directory = args[0]
				return execute(cmd, cfg)
			},
		}
		cli.BindFileFlags(cmd.Flags(), cfg)
		rootCmd.AddCommand(cmd)
	}

	structureCmd := &cobra.Command{
		Use:   "structure",
		Short: "Create files and folders from an indented outline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Command = cli.Structure
			return execute(cmd, cfg)
		},
	}
	cli.BindStructureFlags(structureCmd.Flags(), cfg)
	rootCmd.AddCommand(structureCmd)

	return rootCmd
}

func execute(cmd *cobra.Command, cfg *cli.Config) error {
	logger := logging.New(cfg.Verbose)
	defer logger.Sync()

	if err := loadConfigFile(cmd, cfg, logger); err != nil {
		return err
	}

	app, err := filedress.New(cfg, filedress.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	notice := checkForUpdate(ctx, cfg, logger)

	var summary model.Summary
	if !cfg.Plain && isatty.IsTerminal(os.Stdout.Fd()) {
		m := tui.New(ctx, app)
		p := tea.NewProgram(m)
		m.SetProgram(p)
		final, runErr := p.Run()
		if runErr != nil {
			return fmt.Errorf("error running program: %w", runErr)
		}
		summary, err = final.(tui.Model).Result()
		if err != nil {
			return errFailed
		}
	} else {
		summary, err = app.Execute(ctx)
		ui.PrintSummary(summary)
		if err != nil {
			var detailed *filedress.DetailedError
			if errors.As(err, &detailed) && cfg.Verbose {
				fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
			}
			return err
		}
	}

	notifyUpdate(notice)

	if summary.Failed() {
		return errFailed
	}
	return nil
}

// loadConfigFile merges the configuration file, if any, under the flags
// the user set.
func loadConfigFile(cmd *cobra.Command, cfg *cli.Config, logger *zap.Logger) error {
	path := cfg.ConfigPath
	if path == "" {
		path = config.Find(cfg.Directory)
	}
	if path == "" {
		return nil
	}
	f, err := config.Load(path)
	if err != nil {
		return err
	}
	logger.Debug("loaded configuration", zap.String("path", path))
	cfg.ApplyFile(f, cmd.Flags().Changed)
	return nil
}

// checkForUpdate starts a background release check. The channel receives
// a release when a newer one exists and is closed once the check is over.
func checkForUpdate(ctx context.Context, cfg *cli.Config, logger *zap.Logger) <-chan *update.Release {
	notice := make(chan *update.Release, 1)
	if cfg.NoUpdateCheck || update.Disabled() {
		close(notice)
		return notice
	}
	st, err := state.New(stateDir)
	if err != nil {
		logger.Debug("update check disabled", zap.Error(err))
		close(notice)
		return notice
	}
	checker := &update.Checker{Current: version, State: st, Logger: logger, BaseURL: releaseBaseURL}
	go func() {
		defer close(notice)
		rel, err := checker.Check(ctx)
		if err != nil {
			logger.Debug("update check failed", zap.Error(err))
			return
		}
		if rel != nil {
			notice <- rel
		}
	}()
	return notice
}

// notifyUpdate waits for the release check to finish and prints a notice
// when a newer version exists. The check bounds its own request, so the
// wait is short.
func notifyUpdate(notice <-chan *update.Release) {
	select {
	case rel, ok := <-notice:
		if ok && rel != nil {
			ui.Warning("A new version of filedress is available: %s (current %s)\n%s", rel.Version, version, rel.URL)
		}
	case <-time.After(update.CheckTimeout + time.Second):
	}
}
