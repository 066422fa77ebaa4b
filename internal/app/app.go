// Package app wires configuration into a runnable sanity pipeline.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/efebarandurmaz/doccheck/internal/config"
	"github.com/efebarandurmaz/doccheck/internal/observability"
	"github.com/efebarandurmaz/doccheck/internal/sanity"
	"github.com/efebarandurmaz/doccheck/internal/sanity/ansibledoc"
	"github.com/efebarandurmaz/doccheck/internal/subprocess"
	"github.com/efebarandurmaz/doccheck/internal/targets"
)

// App holds everything needed to run sanity tests for one content tree.
type App struct {
	Config   *config.Config
	Registry *sanity.Registry
	Env      *sanity.Env
	Metrics  *observability.SanityMetrics
}

// NewRegistry registers every available sanity test.
func NewRegistry(cfg *config.Config) *sanity.Registry {
	reg := sanity.NewRegistry()
	reg.Register(ansibledoc.New(ansibledoc.Options{
		Command:             cfg.Doc.Command,
		Extensions:          cfg.Doc.Extensions,
		ExcludedPluginTypes: cfg.Doc.ExcludedPluginTypes,
	}))
	return reg
}

// New builds an App. runner may be nil to execute real commands.
func New(cfg *config.Config, logger *slog.Logger, runner subprocess.Runner) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	m := observability.NewSanityMetrics()

	if runner == nil {
		runner = &subprocess.ExecRunner{
			Timeout: cfg.Doc.Timeout,
			Observe: func(cmd subprocess.Command, d time.Duration, err error) {
				m.RecordCommand(d, err)
			},
		}
	}

	root := cfg.Content.Root
	if root == "" {
		root = "."
	}

	ignoreFile := cfg.Sanity.IgnoreFile
	if ignoreFile != "" && !filepath.IsAbs(ignoreFile) {
		ignoreFile = filepath.Join(root, ignoreFile)
	}
	settings, err := sanity.LoadSettings(ignoreFile)
	if err != nil {
		return nil, fmt.Errorf("loading sanity settings: %w", err)
	}

	coverageDir := cfg.Coverage.OutputDir
	if coverageDir != "" && !filepath.IsAbs(coverageDir) {
		coverageDir = filepath.Join(root, coverageDir)
	}

	return &App{
		Config:   cfg,
		Registry: NewRegistry(cfg),
		Metrics:  m,
		Env: &sanity.Env{
			Root:   root,
			Prefix: cfg.Content.Prefix,
			Runner: runner,
			Coverage: &subprocess.Coverage{
				Enabled:   cfg.Coverage.Enabled,
				Command:   cfg.Coverage.Command,
				OutputDir: coverageDir,
			},
			ExtraEnv: cfg.Doc.Env,
			Settings: settings,
			Logger:   logger,
		},
	}, nil
}

// Run discovers targets and runs the requested tests. Empty tests falls back
// to the configured list, then to every registered test.
func (a *App) Run(ctx context.Context, tests, includes []string) (*sanity.Report, error) {
	if len(tests) == 0 {
		tests = a.Config.Sanity.Tests
	}

	found, err := targets.Discover(a.Env.Root, includes)
	if err != nil {
		return nil, err
	}
	a.Env.Log().Debug("discovered targets", "total", len(found.Targets), "included", len(found.Include))

	return sanity.NewPipeline(a.Registry, a.Env, a.Metrics).Run(ctx, tests, found)
}
