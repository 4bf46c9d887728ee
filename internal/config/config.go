// Package config loads html2md settings from a TOML file and HTML2MD_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/mattn/html2md"
	"github.com/mattn/html2md/internal/sink"
	"github.com/mattn/html2md/internal/source"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	// IgnoredTags replaces the default ignored set when present.
	IgnoredTags []string `toml:"ignored_tags"`
	Spacing     string   `toml:"spacing"`
	AlignTables bool     `toml:"align_tables"`
	BlankLines  bool     `toml:"blank_lines"`
	DirectRows  bool     `toml:"direct_rows"`
	MaxDepth    int      `toml:"max_depth"`
	Encoding    string   `toml:"encoding"`

	Fetch  FetchConfig  `toml:"fetch"`
	Server ServerConfig `toml:"server"`
}

type FetchConfig struct {
	UserAgent string `toml:"user_agent"`
	Timeout   string `toml:"timeout"`
}

type ServerConfig struct {
	Addr         string `toml:"addr"`
	MaxBodyBytes int64  `toml:"max_body_bytes"`

	// AllowPrivate lets /convert/url fetch loopback and private addresses.
	AllowPrivate bool `toml:"allow_private"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Spacing:  html2md.SpacingSeparated.String(),
		MaxDepth: html2md.DefaultMaxDepth,
		Encoding: "utf-8",
		Fetch: FetchConfig{
			UserAgent: source.DefaultUserAgent,
			Timeout:   source.DefaultTimeout.String(),
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 10 << 20,
		},
	}
}

// LoadFile reads path over Default. Keys missing from the file keep their
// default values.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from HTML2MD_* variables that are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("HTML2MD_IGNORED_TAGS"); v != "" {
		c.IgnoredTags = splitList(v)
	}
	c.Spacing = envOr("HTML2MD_SPACING", c.Spacing)
	c.AlignTables = envBool("HTML2MD_ALIGN_TABLES", c.AlignTables)
	c.BlankLines = envBool("HTML2MD_BLANK_LINES", c.BlankLines)
	c.DirectRows = envBool("HTML2MD_DIRECT_ROWS", c.DirectRows)
	c.MaxDepth = envInt("HTML2MD_MAX_DEPTH", c.MaxDepth)
	c.Encoding = envOr("HTML2MD_ENCODING", c.Encoding)
	c.Fetch.UserAgent = envOr("HTML2MD_USER_AGENT", c.Fetch.UserAgent)
	c.Fetch.Timeout = envOr("HTML2MD_TIMEOUT", c.Fetch.Timeout)
	c.Server.Addr = envOr("HTML2MD_ADDR", c.Server.Addr)
	c.Server.MaxBodyBytes = envInt64("HTML2MD_MAX_BODY_BYTES", c.Server.MaxBodyBytes)
	c.Server.AllowPrivate = envBool("HTML2MD_ALLOW_PRIVATE", c.Server.AllowPrivate)
}

func (c Config) Validate() error {
	if _, err := html2md.ParseSpacing(c.Spacing); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w: max_depth must not be negative", ErrInvalid)
	}
	if _, err := sink.Lookup(c.Encoding); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.FetchTimeout(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: server.max_body_bytes must be positive", ErrInvalid)
	}
	return nil
}

// FetchTimeout parses Fetch.Timeout. Empty means source.DefaultTimeout.
func (c Config) FetchTimeout() (time.Duration, error) {
	if c.Fetch.Timeout == "" {
		return source.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil {
		return 0, fmt.Errorf("fetch.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("fetch.timeout must be positive, got %s", d)
	}
	return d, nil
}

// Option builds the converter option.
func (c Config) Option() (*html2md.Option, error) {
	sp, err := html2md.ParseSpacing(c.Spacing)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &html2md.Option{
		IgnoredTags: c.IgnoredTags,
		Spacing:     sp,
		AlignTables: c.AlignTables,
		BlankLines:  c.BlankLines,
		DirectRows:  c.DirectRows,
		MaxDepth:    c.MaxDepth,
	}, nil
}

func splitList(s string) []string {
	list := []string{}
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			list = append(list, f)
		}
	}
	return list
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
