// Package config gathers command settings from flags, OBJSEARCH_* environment
// variables and an optional YAML config file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jacoelho/objsearch/internal/logging"
	"github.com/jacoelho/objsearch/internal/output"
	"github.com/jacoelho/objsearch/internal/search"
)

// EnvPrefix prefixes environment variables, e.g. OBJSEARCH_MAX_DEPTH.
const EnvPrefix = "OBJSEARCH"

const (
	DefaultFormat   = "text"
	DefaultScope    = "branch"
	DefaultLogLevel = "warn"
)

var (
	ErrNoSource        = errors.New("one of --input or --store is required")
	ErrBothSources     = errors.New("--input and --store cannot be used together")
	ErrNoStore         = errors.New("--store is required")
	ErrInvalidFormat   = errors.New("format must be text, json or table")
	ErrInvalidScope    = errors.New("scope must be branch or search")
	ErrInvalidLogLevel = errors.New("log level must be debug, info, warn, error or off")
	ErrNegativeLimit   = errors.New("limit cannot be negative")
	ErrConfigFile      = errors.New("cannot read config file")
)

// Config represents the complete configuration for the objsearch tool.
type Config struct {
	// Sources
	Input string // YAML or JSON document
	Store string // BadgerDB directory

	// Search
	MaxDepth    int     // 0 = unlimited
	MaxFollows  int     // 0 = unlimited
	Scope       string  // branch or search
	ResolveRate float64 // Resolutions per second (0 = unlimited)

	// Output
	Format   string
	LogLevel string
	NoColor  bool
}

// Flag names double as viper keys and config file fields.
const (
	flagConfig      = "config"
	flagInput       = "input"
	flagStore       = "store"
	flagFormat      = "format"
	flagMaxDepth    = "max-depth"
	flagMaxFollows  = "max-follows"
	flagScope       = "scope"
	flagResolveRate = "resolve-rate"
	flagLogLevel    = "log-level"
	flagNoColor     = "no-color"
)

// BindFlags registers the shared flags on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String(flagConfig, "", "YAML config file")
	fs.StringP(flagInput, "i", "", "document file (YAML or JSON)")
	fs.StringP(flagStore, "s", "", "object store directory")
	fs.StringP(flagFormat, "f", DefaultFormat, "output format: text, json or table")
	fs.Int(flagMaxDepth, 0, "containers entered below the trailer, trailer included; references add no depth (0 for unlimited)")
	fs.Int(flagMaxFollows, 0, "maximum references followed per search (0 for unlimited)")
	fs.String(flagScope, DefaultScope, "cycle guard scope: branch or search")
	fs.Float64(flagResolveRate, 0, "reference resolutions per second (0 for unlimited)")
	fs.String(flagLogLevel, DefaultLogLevel, "log level: debug, info, warn, error or off")
	fs.Bool(flagNoColor, false, "disable colored output")
}

// Load resolves the settings for flags registered by BindFlags. Explicit flags
// win over environment variables, which win over the config file, which wins
// over flag defaults.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	if path := v.GetString(flagConfig); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrConfigFile, path, err)
		}
	}

	return &Config{
		Input:       v.GetString(flagInput),
		Store:       v.GetString(flagStore),
		MaxDepth:    v.GetInt(flagMaxDepth),
		MaxFollows:  v.GetInt(flagMaxFollows),
		Scope:       v.GetString(flagScope),
		ResolveRate: v.GetFloat64(flagResolveRate),
		Format:      v.GetString(flagFormat),
		LogLevel:    v.GetString(flagLogLevel),
		NoColor:     v.GetBool(flagNoColor),
	}, nil
}

// Validate checks the settings shared by every command that reads a graph.
func (c *Config) Validate() error {
	switch {
	case c.Input == "" && c.Store == "":
		return ErrNoSource
	case c.Input != "" && c.Store != "":
		return ErrBothSources
	}
	return c.validateSettings()
}

// ValidateImport checks the settings of the import command, which reads the
// input document and writes the store.
func (c *Config) ValidateImport() error {
	if c.Input == "" {
		return ErrNoSource
	}
	if c.Store == "" {
		return ErrNoStore
	}
	return c.validateSettings()
}

func (c *Config) validateSettings() error {
	if _, err := c.OutputFormat(); err != nil {
		return err
	}
	if _, err := c.SearchScope(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max-depth %d", ErrNegativeLimit, c.MaxDepth)
	}
	if c.MaxFollows < 0 {
		return fmt.Errorf("%w: max-follows %d", ErrNegativeLimit, c.MaxFollows)
	}
	if c.ResolveRate < 0 {
		return fmt.Errorf("%w: resolve-rate %g", ErrNegativeLimit, c.ResolveRate)
	}

	return nil
}

func (c *Config) OutputFormat() (output.Format, error) {
	format, err := output.ParseFormat(c.Format)
	if err != nil {
		return output.FormatText, fmt.Errorf("%w, got: %s", ErrInvalidFormat, c.Format)
	}
	return format, nil
}

func (c *Config) SearchScope() (search.Scope, error) {
	scope, err := search.ParseScope(c.Scope)
	if err != nil {
		return search.ScopeBranch, fmt.Errorf("%w, got: %s", ErrInvalidScope, c.Scope)
	}
	return scope, nil
}

func (c *Config) Level() (slog.Level, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo, fmt.Errorf("%w, got: %s", ErrInvalidLogLevel, c.LogLevel)
	}
	return level, nil
}

// SearchOptions translates the search settings into engine options.
func (c *Config) SearchOptions(logger *slog.Logger) []search.Option {
	scope, _ := c.SearchScope()
	return []search.Option{
		search.WithLogger(logger),
		search.WithMaxDepth(c.MaxDepth),
		search.WithMaxFollows(c.MaxFollows),
		search.WithScope(scope),
	}
}
