package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/efebarandurmaz/doccheck/internal/app"
	"github.com/efebarandurmaz/doccheck/internal/config"
	"github.com/efebarandurmaz/doccheck/internal/observability"
	"github.com/efebarandurmaz/doccheck/internal/sanity"
	"github.com/efebarandurmaz/doccheck/internal/sanity/ansibledoc"
	"github.com/efebarandurmaz/doccheck/internal/targets"
)

var errFailed = errors.New("sanity tests failed")

func main() {
	var configPath, root string

	rootCmd := &cobra.Command{
		Use:           "doccheck",
		Short:         "Documentation sanity checks for Ansible content",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path")
	rootCmd.PersistentFlags().StringVar(&root, "root", "", "Content root (overrides content.root)")

	var (
		tests      []string
		includes   []string
		jsonReport bool
		noColor    bool
		metricsOut string
	)
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run sanity tests against the content tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, root)
			if err != nil {
				return err
			}
			return runSanity(cmd.Context(), cfg, tests, includes, jsonReport, !noColor, metricsOut)
		},
	}
	runCmd.Flags().StringSliceVar(&tests, "test", nil, "Sanity test to run (repeatable; default all)")
	runCmd.Flags().StringSliceVar(&includes, "include", nil, "Glob of paths to test (repeatable; default all)")
	runCmd.Flags().BoolVar(&jsonReport, "json", false, "Output results as JSON")
	runCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	runCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write Prometheus metrics to this file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available sanity tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, root)
			if err != nil {
				return err
			}
			for _, name := range app.NewRegistry(cfg).Names() {
				fmt.Println(name)
			}
			return nil
		},
	}

	var stderrPath string
	parseCmd := &cobra.Command{
		Use:   "parse",
		Short: "Attribute saved ansible-doc stderr to files in the content tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, root)
			if err != nil {
				return err
			}
			return parseStderr(cfg, stderrPath)
		},
	}
	parseCmd.Flags().StringVar(&stderrPath, "stderr", "", "File containing ansible-doc stderr")
	_ = parseCmd.MarkFlagRequired("stderr")

	rootCmd.AddCommand(runCmd, listCmd, parseCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func loadConfig(path, root string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if root != "" {
		cfg.Content.Root = root
	}
	return cfg, nil
}

func runSanity(ctx context.Context, cfg *config.Config, tests, includes []string, jsonReport, colorize bool, metricsOut string) error {
	logger := cfg.Log.Logger(os.Stderr)

	tp, err := observability.InitTracing(ctx, &observability.TracingConfig{
		ServiceName:    "doccheck",
		ServiceVersion: "0.1.0",
		OTLPEndpoint:   cfg.Tracing.OTLPEndpoint,
		Insecure:       cfg.Tracing.Insecure,
		SampleRate:     cfg.Tracing.SampleRate,
		ContentRoot:    cfg.Content.Root,
	})
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Warn("tracer shutdown failed", "error", err)
		}
	}()

	a, err := app.New(cfg, logger, nil)
	if err != nil {
		return err
	}

	report, err := a.Run(ctx, tests, includes)
	if err != nil {
		return err
	}

	if jsonReport {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		fmt.Println(string(data))
	} else {
		fmt.Print(sanity.FormatReport(report, colorize))
	}

	if metricsOut != "" {
		f, err := os.Create(metricsOut)
		if err != nil {
			return fmt.Errorf("create metrics file: %w", err)
		}
		werr := a.Metrics.Registry.WritePrometheus(f)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return fmt.Errorf("write metrics: %w", werr)
		}
	}

	if report.Status == sanity.StatusFailure {
		return errFailed
	}
	return nil
}

func parseStderr(cfg *config.Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read stderr file: %w", err)
	}

	root := cfg.Content.Root
	if root == "" {
		root = "."
	}
	found, err := targets.Discover(root, nil)
	if err != nil {
		return err
	}
	categories := ansibledoc.BuildCategories(found.Targets, found.Targets, cfg.Content.Prefix, cfg.Doc.ExcludedPluginTypes)

	if unmatched := attributeStderr(os.Stdout, string(data), categories); unmatched > 0 {
		return fmt.Errorf("%d line(s) are not ansible-doc errors", unmatched)
	}
	return nil
}

// attributeStderr writes one line per stderr line, split the same way the
// ansible-doc test splits it, and returns how many lines did not match.
func attributeStderr(w io.Writer, stderr string, categories *ansibledoc.Categories) int {
	unmatched := 0
	for _, line := range ansibledoc.StderrLines(stderr) {
		msg, matched := ansibledoc.ParseLine(line, categories)
		switch {
		case !matched:
			unmatched++
			fmt.Fprintf(w, "unparsed: %q\n", line)
		case msg == nil:
			fmt.Fprintf(w, "unattributed: %s\n", line)
		default:
			fmt.Fprintln(w, msg)
		}
	}
	return unmatched
}
