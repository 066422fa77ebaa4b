package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Content  ContentConfig  `mapstructure:"content"`
	Doc      DocConfig      `mapstructure:"doc"`
	Sanity   SanityConfig   `mapstructure:"sanity"`
	Coverage CoverageConfig `mapstructure:"coverage"`
	Log      LogConfig      `mapstructure:"log"`
	Tracing  TracingConfig  `mapstructure:"tracing"`
	Temporal TemporalConfig `mapstructure:"temporal"`
}

type ContentConfig struct {
	Root string `mapstructure:"root"`
	// Prefix is prepended to module and plugin names, e.g. "community.general."
	// when testing a collection.
	Prefix string `mapstructure:"prefix"`
}

type DocConfig struct {
	Command             string            `mapstructure:"command"`
	Extensions          []string          `mapstructure:"extensions"`
	ExcludedPluginTypes []string          `mapstructure:"excluded_plugin_types"`
	Timeout             time.Duration     `mapstructure:"timeout"`
	Env                 map[string]string `mapstructure:"env"`
}

type SanityConfig struct {
	IgnoreFile string   `mapstructure:"ignore_file"`
	Tests      []string `mapstructure:"tests"`
}

type CoverageConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Command   []string `mapstructure:"command"`
	OutputDir string   `mapstructure:"output_dir"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TracingConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	Insecure     bool    `mapstructure:"insecure"`
	SampleRate   float64 `mapstructure:"sample_rate"`
}

type TemporalConfig struct {
	Host      string `mapstructure:"host"`
	Namespace string `mapstructure:"namespace"`
	TaskQueue string `mapstructure:"task_queue"`
}

// setDefaults registers every key, including zero-valued ones: AutomaticEnv
// only applies to keys viper already knows about when unmarshalling.
func setDefaults(v *viper.Viper) {
	v.SetDefault("content.root", ".")
	v.SetDefault("content.prefix", "")
	v.SetDefault("doc.command", "ansible-doc")
	v.SetDefault("doc.extensions", []string{".py"})
	v.SetDefault("doc.excluded_plugin_types", []string{"action", "doc_fragments", "filter", "netconf", "terminal", "test"})
	v.SetDefault("doc.timeout", time.Duration(0))
	v.SetDefault("doc.env", map[string]string{})
	v.SetDefault("sanity.ignore_file", "test/sanity/ignore.txt")
	v.SetDefault("sanity.tests", []string{})
	v.SetDefault("coverage.enabled", false)
	v.SetDefault("coverage.command", []string{"coverage", "run", "--parallel-mode", "--"})
	v.SetDefault("coverage.output_dir", "test/results/coverage")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("tracing.otlp_endpoint", "")
	v.SetDefault("tracing.insecure", true)
	v.SetDefault("tracing.sample_rate", 1.0)
	v.SetDefault("temporal.host", "localhost:7233")
	v.SetDefault("temporal.namespace", "default")
	v.SetDefault("temporal.task_queue", "doccheck")
}

// Validate checks configuration for issues and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	if c.Doc.Command == "" {
		warnings = append(warnings, "doc.command is empty; ansible-doc will be used")
	}
	if c.Coverage.Enabled && len(c.Coverage.Command) == 0 {
		warnings = append(warnings, "coverage is enabled but coverage.command is empty")
	}
	if c.Content.Prefix != "" && !strings.HasSuffix(c.Content.Prefix, ".") {
		warnings = append(warnings, fmt.Sprintf("content.prefix %q should end with '.'", c.Content.Prefix))
	}
	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		warnings = append(warnings, fmt.Sprintf("tracing.sample_rate %.2f is outside [0.0, 1.0]", c.Tracing.SampleRate))
	}
	if c.Doc.Timeout < 0 {
		warnings = append(warnings, fmt.Sprintf("doc.timeout %s is negative", c.Doc.Timeout))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		warnings = append(warnings, fmt.Sprintf("log.format %q is not text or json", c.Log.Format))
	}

	return warnings
}

// Load reads configuration from file and environment. An empty path uses
// defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("DOCCHECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// viper lowercases map keys; environment variable names are upper case.
	if len(cfg.Doc.Env) > 0 {
		env := make(map[string]string, len(cfg.Doc.Env))
		for k, val := range cfg.Doc.Env {
			env[strings.ToUpper(k)] = val
		}
		cfg.Doc.Env = env
	}

	if warnings := cfg.Validate(); len(warnings) > 0 {
		for _, warning := range warnings {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warning)
		}
	}

	return &cfg, nil
}

// Logger builds a slog logger writing to w.
func (c LogConfig) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
