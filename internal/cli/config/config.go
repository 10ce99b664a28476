// Package config loads CLI and server settings from defaults, a YAML file,
// LOREM_* environment variables and command-line flags.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/emmetio/lorem/pkg/node"
	"github.com/emmetio/lorem/pkg/streaming"
	"github.com/emmetio/lorem/pkg/utils"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config file names searched in the working directory.
const (
	ConfigFileName    = "lorem.yaml"
	ConfigFileNameAlt = "lorem.yml"
)

// EnvPrefix is the prefix of environment overrides. A double underscore
// separates nesting levels: LOREM_STREAM__CHUNK_SIZE sets stream.chunk_size.
const EnvPrefix = "LOREM_"

// DefaultAddr is the default listen address of the server.
const DefaultAddr = ":8080"

// Config holds the resolved settings.
type Config struct {
	Lang       string       `koanf:"lang"`
	WordCount  int          `koanf:"word_count"`
	SkipCommon bool         `koanf:"skip_common"`
	Addr       string       `koanf:"addr"`
	Verbose    bool         `koanf:"verbose"`
	Stream     StreamConfig `koanf:"stream"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// StreamConfig holds the server's streaming defaults.
type StreamConfig struct {
	IncludeUsage    bool          `koanf:"include_usage"`
	ChunkSize       int           `koanf:"chunk_size"`
	DelayMin        time.Duration `koanf:"delay_min"`
	DelayMax        time.Duration `koanf:"delay_max"`
	TokensPerSecond float64       `koanf:"tokens_per_second"`
}

// flagKeys maps flag names to config keys. Flags not listed are ignored.
var flagKeys = map[string]string{
	"lang":              "lang",
	"words":             "word_count",
	"skip-common":       "skip_common",
	"addr":              "addr",
	"verbose":           "verbose",
	"include-usage":     "stream.include_usage",
	"chunk-size":        "stream.chunk_size",
	"delay-min":         "stream.delay_min",
	"delay-max":         "stream.delay_max",
	"tokens-per-second": "stream.tokens_per_second",
}

// Options returns the generation options described by c.
func (c *Config) Options() node.Options {
	return node.Options{
		WordCount:  utils.Pointer(c.WordCount),
		SkipCommon: utils.Pointer(c.SkipCommon),
		Lang:       c.Lang,
	}
}

// StreamOptions returns the streaming defaults described by c.
func (c *Config) StreamOptions() streaming.StreamOptions {
	return streaming.StreamOptions{
		IncludeUsage:    c.Stream.IncludeUsage,
		ChunkSize:       c.Stream.ChunkSize,
		DelayMin:        c.Stream.DelayMin,
		DelayMax:        c.Stream.DelayMax,
		TokensPerSecond: c.Stream.TokensPerSecond,
	}
}

// findConfigFile finds the config file to use.
// Priority: explicit path > lorem.yaml > lorem.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range []string{ConfigFileName, ConfigFileNameAlt} {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"lang":              node.DefaultLang,
		"word_count":        node.DefaultWordCount,
		"skip_common":       false,
		"addr":              DefaultAddr,
		"verbose":           false,
		"stream.chunk_size": 3,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: LOREM_WORD_COUNT -> word_count
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.WordCount < 0 {
		return fmt.Errorf("word_count must not be negative, got %d", c.WordCount)
	}
	if c.Stream.ChunkSize < 0 {
		return fmt.Errorf("stream.chunk_size must not be negative, got %d", c.Stream.ChunkSize)
	}
	if c.Stream.DelayMax != 0 && c.Stream.DelayMax < c.Stream.DelayMin {
		return fmt.Errorf("stream.delay_max (%s) is below stream.delay_min (%s)", c.Stream.DelayMax, c.Stream.DelayMin)
	}
	return nil
}
