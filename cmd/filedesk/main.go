// Package main is the entry point for filedesk.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/CageChen/filedesk/internal/config"
	"github.com/CageChen/filedesk/internal/files"
	"github.com/CageChen/filedesk/internal/server"
	"github.com/CageChen/filedesk/internal/shell"
	"github.com/CageChen/filedesk/internal/util"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	baseDir    string
	logLevel   string
	noWatch    bool
}

type app struct {
	cfg   *config.Config
	files *files.Manager
	log   zerolog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "filedesk",
		Short: "Manage the files of one directory from a menu or over HTTP",
		// Anything other than the server subcommand opens the menu.
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			return a.runShell(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVarP(&opts.baseDir, "dir", "d", "", "Base directory for all file operations")
	rootCmd.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "l", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&opts.noWatch, "no-watch", false, "Disable the /ws change feed")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "server [port]",
		Short: "Start the HTTP server without the interactive menu",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port := -1
			if len(args) == 1 {
				p, err := config.ParsePort(args[0])
				if err != nil {
					return err
				}
				port = p
			}

			a, err := setup(cmd, opts)
			if err != nil {
				return err
			}
			if port >= 0 {
				a.cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(a.cfg, a.files).Run(ctx)
		},
	})

	return rootCmd
}

// setup loads configuration, applies flag overrides, initializes logging and
// opens the base directory.
func setup(cmd *cobra.Command, opts *options) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dir") {
		cfg.BaseDir = opts.baseDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if opts.noWatch {
		cfg.Watch = false
	}

	util.InitializeLogger(util.ParseLogLevel(cfg.LogLevel))
	logger := util.GetLogger("main")
	if path := cfg.GetConfigFilePath(); path != "" {
		logger.Debug().Str("config", path).Msg("Loaded configuration")
	}

	m, err := files.New(cfg.BaseDir)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("dir", m.BaseDir()).Msg("Base directory ready")

	return &app{cfg: cfg, files: m, log: logger}, nil
}

func (a *app) runShell(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	sh := shell.New(a.files, a.serve,
		shell.WithIO(cmd.InOrStdin(), out),
		shell.WithColor(color),
	)
	return sh.Run(cmd.Context())
}

// serve runs the HTTP server on port with the rest of the configuration unchanged.
func (a *app) serve(ctx context.Context, port int) error {
	cfg := *a.cfg
	cfg.Port = port
	if err := server.New(&cfg, a.files).Run(ctx); err != nil {
		a.log.Error().Err(err).Int("port", port).Msg("Server failed")
		return fmt.Errorf("server on port %d: %w", port, err)
	}
	return nil
}
