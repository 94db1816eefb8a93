// Package cli holds the mmdevice command tree. cmd/mmdevice only calls Execute.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mmdevice/internal/adapter"
	"mmdevice/internal/common/fsutil"
	"mmdevice/internal/logging"
)

// EnvPath lists adapter search paths, separated like PATH.
const EnvPath = "MMDEVICE_PATH"

// Options collects the persistent flags.
type Options struct {
	SearchPaths []string
	LogLevel    string
	LogFormat   string
	Output      string
	Metrics     bool

	log zerolog.Logger
}

func defaultOptions() *Options {
	o := &Options{LogLevel: "warn", LogFormat: "text", Output: "text"}
	if v := os.Getenv(EnvPath); v != "" {
		o.SearchPaths = filepath.SplitList(v)
	}
	return o
}

// Execute runs the command tree against os.Args.
func Execute() error { return NewRootCmd(defaultOptions()).Execute() }

// NewRootCmd constructs the command tree wired to opts.
func NewRootCmd(opts *Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "mmdevice",
		Short:         "Inspect and exercise device adapter modules",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVarP(&opts.SearchPaths, "search-path", "p", opts.SearchPaths, "Directories scanned for adapter libraries (defaults "+EnvPath+")")
	root.PersistentFlags().StringVar(&opts.LogLevel, "log-level", opts.LogLevel, "Log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&opts.LogFormat, "log-format", opts.LogFormat, "Log format: json|text")
	root.PersistentFlags().StringVarP(&opts.Output, "output", "o", opts.Output, "Output format: text|json|yaml")
	root.PersistentFlags().BoolVar(&opts.Metrics, "metrics", false, "Print collected metrics after the command")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		switch opts.Output {
		case "text", "json", "yaml":
		default:
			return fmt.Errorf("unsupported output format: %s", opts.Output)
		}
		paths, err := fsutil.ExpandHomeAll(opts.SearchPaths)
		if err != nil {
			return err
		}
		opts.SearchPaths = paths
		opts.log = logging.New(logging.Options{Level: opts.LogLevel, Format: opts.LogFormat, Output: cmd.ErrOrStderr()})
		for _, p := range paths {
			if !fsutil.PathExists(p) {
				opts.log.Warn().Str("path", p).Msg("adapter search path does not exist")
			}
		}
		return nil
	}
	root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if !opts.Metrics {
			return nil
		}
		return writeMetrics(cmd.OutOrStdout(), prometheus.DefaultGatherer)
	}

	root.AddCommand(newAdaptersCmd(opts), newDevicesCmd(opts), newProbeCmd(opts))
	return root
}

func (o *Options) manager(pub adapter.EventPublisher) *adapter.Manager {
	return adapter.NewManager(adapter.ManagerConfig{
		SearchPaths: o.SearchPaths,
		Logger:      &o.log,
		Publisher:   pub,
	})
}

// writeMetrics prints the mmdevice metric families in the text exposition format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range mfs {
		if !strings.HasPrefix(mf.GetName(), "mmdevice_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
