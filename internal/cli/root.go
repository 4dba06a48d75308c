// Package cli defines Cobra command definitions for the nymview CLI.
// This file contains the root command, which opens the browser.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/olivoil/nymview/internal/address"
	"github.com/olivoil/nymview/internal/app"
	"github.com/olivoil/nymview/internal/backend"
	"github.com/olivoil/nymview/internal/config"
	"github.com/olivoil/nymview/internal/logging"
	"github.com/olivoil/nymview/internal/mixnet"
)

var version = "dev" // set via ldflags at build time

// flags holds the global command line flags.
type flags struct {
	configPath string
	clientURL  string
	logLevel   string
	logFile    string
}

// NewRootCmd builds the nymview command tree.
func NewRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:   "nymview [nym://server/page]",
		Short: "Browse markdown pages served over the Nym mixnet",
		Long: `NymView fetches pages from servers on the Nym mixnet through a local
nym-client and renders them in the terminal. Pages are addressed as
nym://<identity>.<encryption>@<gateway>/<page>.`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return fmt.Errorf("nymview needs an interactive terminal; use 'nymview fetch' to print a page")
			}
			return runBrowser(cmd, &f, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "config file (default "+config.DefaultConfigPath()+")")
	pf.StringVar(&f.clientURL, "client-url", "", "nym-client websocket address (default "+mixnet.DefaultURL+")")
	pf.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&f.logFile, "log-file", "", "log file (default "+config.DefaultLogPath()+")")

	cmd.AddCommand(newFetchCmd(&f))
	cmd.AddCommand(newStatusCmd(&f))
	cmd.AddCommand(newConfigCmd(&f))
	return cmd
}

// Execute runs the root command. Called from main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBrowser(cmd *cobra.Command, f *flags, args []string) error {
	cfg, path, err := f.load(cmd)
	if err != nil {
		return err
	}

	var start string
	if len(args) == 1 {
		start = strings.TrimSpace(args[0])
		if _, _, ok := address.ParseNymURL(start); !ok {
			return fmt.Errorf("%q is not a nym:// address", start)
		}
	}

	log, err := logging.New(logging.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return fmt.Errorf("failed to start logging: %w", err)
	}
	defer log.Sync()
	log.Info("starting", zap.String("version", version), zap.String("config", path))

	return app.Run(app.Options{
		Config:     cfg,
		ConfigPath: path,
		StartURL:   start,
		Manager:    newManager(cfg, log),
		Log:        log,
	})
}

// path returns the config file named by --config, or the default location.
func (f *flags) path() string {
	if f.configPath != "" {
		return f.configPath
	}
	return config.DefaultConfigPath()
}

// load reads the config file and applies flag overrides. It returns the
// config and the file path it was read from.
func (f *flags) load(cmd *cobra.Command) (*config.Config, string, error) {
	path := f.path()
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}

	changed := cmd.Flags().Changed
	if changed("client-url") {
		cfg.Client.URL = f.clientURL
	}
	if changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if changed("log-file") {
		cfg.Log.File = f.logFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func newManager(cfg *config.Config, log *zap.Logger) *backend.Manager {
	url := cfg.Client.URL
	dial := func(ctx context.Context) (backend.Session, error) {
		c, err := mixnet.Dial(ctx, url, log.Named("mixnet"))
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return backend.NewManager(dial, cfg.Client.ConnectTimeout.Std(), log.Named("session"))
}
