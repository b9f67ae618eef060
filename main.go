package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/chmouel/go-clover-coverage/internal/badge"
	"github.com/chmouel/go-clover-coverage/internal/clover"
	"github.com/chmouel/go-clover-coverage/internal/config"
	"github.com/chmouel/go-clover-coverage/internal/generator"
	"github.com/chmouel/go-clover-coverage/internal/model"
	"github.com/chmouel/go-clover-coverage/internal/parser"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Set by the release build with -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("go-clover-coverage failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var configFile string

	cmd := &cobra.Command{
		Use:           "go-clover-coverage",
		Short:         "Convert coverage data into a Clover XML report.",
		Long:          `go-clover-coverage reads a Go coverage profile or an Istanbul coverage-final.json and writes a Clover 3.2.0 XML report for CI and coverage dashboards.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				return fmt.Errorf("binding flags: %w", err)
			}
			config.Init(v, configFile)
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), cfg.Verbose)
			return run(cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "Path to config file (default .clover.yaml in . or $HOME)")
	flags.StringP("profile", "p", "coverage.out", "Coverage input: Go profile or istanbul coverage-final.json")
	flags.String("format", config.FormatGo, "Input format: go or istanbul")
	flags.StringP("output", "o", clover.DefaultFile, "Output Clover XML file, - for stdout")
	flags.String("src", ".", "Source root directory")
	flags.StringSlice("exclude", nil, "Glob of relative paths to leave out of the report (repeatable)")
	flags.String("badge", "", "Also write an SVG statement coverage badge to this path")
	flags.String("badge-label", "coverage", "Label shown on the badge")
	flags.Bool("summary", false, "Print a per-package coverage table")
	flags.BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newVersionCmd())
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of go-clover-coverage.",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("go-clover-coverage\n")
			cmd.Printf("  Version: %s\n", version)
			cmd.Printf("  Commit:  %s\n", commit)
			cmd.Printf("  Built:   %s\n", date)
			cmd.Printf("  Runtime: %s\n", runtime.Version())
		},
	}
}

func setupLogging(w io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	})))
}

func parse(cfg *config.Config) (*model.Node, error) {
	opts := parser.Options{SrcRoot: cfg.Src, Excludes: cfg.Exclude}
	if cfg.Format == config.FormatIstanbul {
		return parser.ParseIstanbul(cfg.Profile, opts)
	}
	return parser.Parse(cfg.Profile, opts)
}

func run(cfg *config.Config, stdout, stderr io.Writer) error {
	root, err := parse(cfg)
	if err != nil {
		return fmt.Errorf("parsing coverage: %w", err)
	}

	agg, err := clover.Aggregate(root)
	if err != nil {
		return err
	}

	if err := generator.Generate(root, cfg.Output, generator.Options{Stdout: stdout, Aggregation: agg}); err != nil {
		return fmt.Errorf("generating report: %w", err)
	}

	total, _ := agg.Summary(root, false)
	if cfg.Badge != "" {
		opts := badge.Options{Label: cfg.BadgeLabel, Stdout: stdout}
		if err := badge.GenerateBadge(total.Statements, cfg.Badge, opts); err != nil {
			return fmt.Errorf("generating badge: %w", err)
		}
	}

	// Keep stdout clean when it carries the report
	console := stdout
	if cfg.Output == "-" || cfg.Badge == "-" {
		console = stderr
	}
	printResult(console, cfg.Output, total, agg.Stats())
	if cfg.Summary {
		if err := writePackageTable(console, root, agg); err != nil {
			return fmt.Errorf("writing summary table: %w", err)
		}
	}
	return nil
}
