package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/olivoil/mvu/internal/app"
	"github.com/olivoil/mvu/internal/config"
	"github.com/olivoil/mvu/internal/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   version.AppName,
	Short: "Model-View-Update terminal runtime demo",
	Long: `mvu runs a small terminal application built on a Model-View-Update
runtime: a counter, a form wizard, concurrent fetches and a file tail,
switched with tab or from the menu.

Configuration is read from ~/.config/mvu/config.yaml and the nearest
.mvu.yaml, then MVU_* environment variables, then flags.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) || !term.IsTerminal(int(os.Stdin.Fd())) {
			return errors.New("mvu needs an interactive terminal")
		}
		cfg, err := config.Load(configPath, cmd.Flags())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
		defer stop()

		if err := app.Run(ctx, cfg); err != nil {
			return fmt.Errorf("run: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "read configuration from this file only")

	f := rootCmd.Flags()
	f.String("screen", "", "screen to start on (menu, counter, wizard, fetch, tail)")
	f.Bool("alt-screen", true, "use the alternate screen buffer")
	f.Bool("mouse", true, "enable mouse wheel support")
	f.Bool("no-color", false, "disable colors")
	f.String("theme", "", "TOML theme file")
	f.Bool("record", false, "record the run in the journal")
	f.String("log-file", "", "write debug logs to this file")
	f.String("log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(journalCmd)
}
