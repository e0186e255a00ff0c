package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/amasotti/cbplace/internal/analysis"
	"github.com/amasotti/cbplace/internal/config"
	"github.com/amasotti/cbplace/internal/kube"
	"github.com/amasotti/cbplace/internal/logging"
	"github.com/amasotti/cbplace/internal/output"
)

// rootOptions holds the raw flag values. They are merged into a config.Config by config().
type rootOptions struct {
	configPath  string
	kubeconfig  string
	kubeContext string
	debug       bool

	reportVersion int
	targets       []string
	readiness     bool
	unused        bool
	unusedPrefix  string

	output      string
	noColor     bool
	markdownDir string
}

var rootCmd = newRootCmd(&rootOptions{})

func newRootCmd(o *rootOptions) *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "cbplace",
		Short: "Report where Couchbase pods run across nodes, zones and instance groups",
		Long: `cbplace lists the Couchbase server and Sync Gateway pods of a cluster next to
the node they are scheduled on: its availability zone, instance size and
instance group. For every pod it shows the zone placement intent and which
Couchbase services (data, index, query, search) the pod runs.

Report version 2 adds a container readiness column and warns about nodes in
the Couchbase instance groups that run none of the reported pods.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Initialize(cmd.ErrOrStderr(), o.debug)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config(cmd.Flags())
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()

			clients, err := kube.NewClients(o.kubeconfig, o.kubeContext)
			if err != nil {
				if errors.Is(err, kube.ErrNoContexts) {
					return err
				}
				return fmt.Errorf("failed to connect to cluster: %w", err)
			}
			return run(ctx, cmd.OutOrStdout(), clients, cfg)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&o.debug, "debug", false, "enable debug logging")
	f.StringVar(&o.kubeconfig, "kubeconfig", "", "path to kubeconfig file (default: $KUBECONFIG or ~/.kube/config)")
	f.StringVar(&o.kubeContext, "context", "", "Kubernetes context to use (default: current context)")
	f.StringVar(&o.configPath, "config", "", "YAML configuration file")
	f.IntVar(&o.reportVersion, "report-version", 2, "report layout: 1 (placement only) or 2 (readiness and unused nodes)")
	f.StringArrayVar(&o.targets, "target", nil, "NAMESPACE:SELECTOR to report, repeatable (default: couchbase:app=couchbase and couchbase-sync:app=sync-gateway)")
	f.BoolVar(&o.readiness, "readiness", defaults.IncludeReadiness, "show per-container readiness (overrides --report-version)")
	f.BoolVar(&o.unused, "unused", defaults.TrackUnused, "warn about instance-group nodes without reported pods (overrides --report-version)")
	f.StringVar(&o.unusedPrefix, "unused-prefix", defaults.UnusedGroupPrefix, "instance-group prefix checked for unused nodes")
	f.StringVarP(&o.output, "output", "o", defaults.Output, "output format: table, json or yaml")
	f.BoolVar(&o.noColor, "no-color", false, "disable colors in table output")
	f.StringVar(&o.markdownDir, "markdown-dir", "", "also save tables as markdown files below this directory")

	return cmd
}

// config merges defaults, the report-version preset, the config file and explicitly set flags,
// in that order.
func (o *rootOptions) config(flags *pflag.FlagSet) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if err := cfg.ApplyVersion(o.reportVersion); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(o.configPath, cfg)
	if err != nil {
		return nil, err
	}

	var flagErr error
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "target":
			targets := make([]config.Target, 0, len(o.targets))
			for _, s := range o.targets {
				t, err := config.ParseTarget(s)
				if err != nil {
					flagErr = err
					return
				}
				targets = append(targets, t)
			}
			cfg.Targets = targets
		case "readiness":
			cfg.IncludeReadiness = o.readiness
		case "unused":
			cfg.TrackUnused = o.unused
		case "unused-prefix":
			cfg.UnusedGroupPrefix = o.unusedPrefix
		case "output":
			cfg.Output = o.output
		case "no-color":
			cfg.NoColor = o.noColor
		case "markdown-dir":
			cfg.MarkdownDir = o.markdownDir
		}
	})
	if flagErr != nil {
		return nil, flagErr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	log.Debug().
		Stringers("targets", targetStringers(cfg.Targets)).
		Bool("readiness", cfg.IncludeReadiness).
		Bool("unused", cfg.TrackUnused).
		Str("output", cfg.Output).
		Msg("resolved configuration")
	return cfg, nil
}

// run produces one report from the cluster behind clients.
func run(ctx context.Context, w io.Writer, clients *kube.Clients, cfg *config.Config) error {
	inv, err := kube.FetchInventory(ctx, clients, cfg.Targets, cfg.TrackUnused)
	if err != nil {
		return err
	}

	report := analysis.BuildReport(inv, cfg)
	report.ContextName = clients.ContextName

	renderer := output.New(cfg.Output, output.Options{
		NoColor:     cfg.NoColor,
		MarkdownDir: cfg.MarkdownDir,
	})
	return renderer.Render(w, report)
}

func targetStringers(targets []config.Target) []fmt.Stringer {
	out := make([]fmt.Stringer, 0, len(targets))
	for _, t := range targets {
		out = append(out, t)
	}
	return out
}

// Execute runs the root command and exits 1 on failure.
func Execute() {
	if err := execute(rootCmd, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// execute sets up console logging before cobra parses flags, so parse errors are logged the same
// way as run errors. PersistentPreRun re-initializes it once --debug is known.
func execute(cmd *cobra.Command, stderr io.Writer) error {
	logging.Initialize(stderr, false)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(context.Background())
	if err != nil {
		log.Error().Err(err).Msg("report failed")
	}
	return err
}
