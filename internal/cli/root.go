// Package cli implements the kdmap command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hupe1980/kdmap"
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

// envPrefix prefixes the environment variables backing persistent flags.
const envPrefix = "KDMAP_"

type app struct {
	cfg    config
	getenv func(string) string
	logger *kdmap.Logger
}

// NewRootCmd builds the kdmap command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(os.Getenv)
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	a := &app{getenv: getenv}

	root := &cobra.Command{
		Use:   "kdmap",
		Short: "Query tile maps with a k-d tree",
		Long: `kdmap loads a tile map (JSON or TOML, optionally zstd or lz4 compressed)
from local disk, S3 or MinIO and answers nearest-tile queries.

Every persistent flag can also be set through a KDMAP_* environment
variable, e.g. KDMAP_MAP or KDMAP_LOG_LEVEL.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.applyEnv(cmd, a.getenv); err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), a.cfg.LogLevel, a.cfg.LogFormat)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}
	a.cfg.bind(root)

	root.AddCommand(
		a.nearestCmd(),
		a.knnCmd(),
		a.withinCmd(),
		a.boundsCmd(),
		a.statsCmd(),
		a.snapshotCmd(),
		a.serveCmd(),
		versionCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func newLogger(w io.Writer, level, format string) (*kdmap.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text", "":
		return kdmap.NewLogger(slog.NewTextHandler(w, opts)), nil
	case "json":
		return kdmap.NewLogger(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (want text or json)", format)
	}
}

// openMap loads the configured map with logging and any extra options.
func (a *app) openMap(cmd *cobra.Command, opts ...kdmap.Option) (*kdmap.Map, error) {
	if a.cfg.Map == "" {
		return nil, fmt.Errorf("no map given: use --map or %sMAP", envPrefix)
	}
	ctx := cmd.Context()
	store, err := a.cfg.openStore(ctx)
	if err != nil {
		return nil, err
	}
	opts = append([]kdmap.Option{kdmap.WithLogger(a.logger)}, opts...)
	m, err := kdmap.Open(ctx, store, a.cfg.Map, opts...)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", a.cfg.Map, err)
	}
	return m, nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("kdmap version %s\n", version)
		},
	}
}
