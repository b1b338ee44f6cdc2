package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Output        string `yaml:"output"`
	CheckpointDir string `yaml:"checkpoint_dir"`
	DebugDir      string `yaml:"debug_dir"`
	Debug         bool   `yaml:"debug"`

	MaxChapters    int `yaml:"max_chapters"`
	MaxRetries     int `yaml:"max_retries"`
	TimeoutSec     int `yaml:"timeout_sec"`
	RetryBackoffMs int `yaml:"retry_backoff_ms"`
	MinDelayMs     int `yaml:"min_delay_ms"`
	MaxDelayMs     int `yaml:"max_delay_ms"`

	DefaultURL      string `yaml:"default_url"`
	ClearCheckpoint bool   `yaml:"clear_checkpoint"`

	Cookie     string `yaml:"cookie"`
	CookieFile string `yaml:"cookie_file"`
	UserAgent  string `yaml:"user_agent"`
}

type Options struct {
	IgnoreConfig    bool
	Debug           bool
	Output          string
	CheckpointDir   string
	DebugDir        string
	MaxChapters     int
	MaxRetries      int
	TimeoutSec      int
	RetryBackoffMs  int
	MinDelayMs      int
	MaxDelayMs      int
	DefaultURL      string
	ClearCheckpoint bool
	Cookie          string
	CookieFile      string
	UserAgent       string
}

func DefaultConfig() *Config {
	return &Config{
		Output:          ".",
		CheckpointDir:   ".",
		DebugDir:        "debug_html",
		Debug:           false,
		MaxChapters:     100000,
		MaxRetries:      3,
		TimeoutSec:      30,
		RetryBackoffMs:  1000,
		MinDelayMs:      100,
		MaxDelayMs:      500,
		DefaultURL:      "",
		ClearCheckpoint: false,
		Cookie:          "",
		CookieFile:      "",
		UserAgent:       "",
	}
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMs) * time.Millisecond
}

func (c *Config) MinDelay() time.Duration {
	return time.Duration(c.MinDelayMs) * time.Millisecond
}

func (c *Config) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelayMs) * time.Millisecond
}

func (c *Config) Validate() error {
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1")
	}
	if c.TimeoutSec <= 0 {
		return fmt.Errorf("timeout_sec must be positive")
	}
	if c.MinDelayMs < 0 || c.MaxDelayMs < 0 {
		return fmt.Errorf("delay bounds cannot be negative")
	}
	if c.MaxDelayMs < c.MinDelayMs {
		return fmt.Errorf("max_delay_ms (%d) cannot be below min_delay_ms (%d)", c.MaxDelayMs, c.MinDelayMs)
	}
	if c.RetryBackoffMs < 0 {
		return fmt.Errorf("retry_backoff_ms cannot be negative")
	}
	return nil
}

func SaveYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func loadYAML(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	return &c, nil
}

func LoadMerged(opts Options) (*Config, string, error) {
	if opts.IgnoreConfig {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(ignored config)", nil
	}

	activePath, err := ActiveConfigPath()
	if err == ErrNoConfig || activePath == "" {
		cfg := DefaultConfig()
		mergeConfig(cfg, opts)
		normalizeDefaults(cfg)
		return cfg, "(default config in memory)\nRun `noveld config init` to create an actual config\n", nil
	}
	if err != nil {
		return nil, "", err
	}

	cfg, err := loadYAML(activePath)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config %s: %w", activePath, err)
	}

	mergeConfig(cfg, opts)
	normalizeDefaults(cfg)

	return cfg, activePath, nil
}

func mergeConfig(c *Config, o Options) {
	if o.Output != "" {
		c.Output = o.Output
	}
	if o.CheckpointDir != "" {
		c.CheckpointDir = o.CheckpointDir
	}
	if o.DebugDir != "" {
		c.DebugDir = o.DebugDir
	}
	if o.Debug {
		c.Debug = true
	}
	if o.MaxChapters != 0 {
		c.MaxChapters = o.MaxChapters
	}
	if o.MaxRetries != 0 {
		c.MaxRetries = o.MaxRetries
	}
	if o.TimeoutSec != 0 {
		c.TimeoutSec = o.TimeoutSec
	}
	if o.RetryBackoffMs != 0 {
		c.RetryBackoffMs = o.RetryBackoffMs
	}
	if o.MinDelayMs != 0 {
		c.MinDelayMs = o.MinDelayMs
	}
	if o.MaxDelayMs != 0 {
		c.MaxDelayMs = o.MaxDelayMs
	}
	if o.DefaultURL != "" {
		c.DefaultURL = o.DefaultURL
	}
	if o.ClearCheckpoint {
		c.ClearCheckpoint = true
	}
	if o.Cookie != "" {
		c.Cookie = o.Cookie
	}
	if o.CookieFile != "" {
		c.CookieFile = o.CookieFile
	}
	if o.UserAgent != "" {
		c.UserAgent = o.UserAgent
	}
}

func normalizeDefaults(c *Config) {
	if c.Output == "" {
		c.Output = "."
	}
	if c.CheckpointDir == "" {
		c.CheckpointDir = "."
	}
	if c.DebugDir == "" {
		c.DebugDir = "debug_html"
	}
	if c.MaxChapters == 0 {
		c.MaxChapters = 100000
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.TimeoutSec == 0 {
		c.TimeoutSec = 30
	}
	if c.RetryBackoffMs == 0 {
		c.RetryBackoffMs = 1000
	}
	if c.MaxDelayMs == 0 {
		c.MaxDelayMs = 500
	}
}

func (c *Config) Print() {
	fmt.Printf(" -output: %s\n", c.Output)
	fmt.Printf(" -checkpoint_dir: %s\n", c.CheckpointDir)
	fmt.Printf(" -max_chapters: %d\n", c.MaxChapters)
	fmt.Printf(" -max_retries: %d\n", c.MaxRetries)
	fmt.Printf(" -timeout_sec: %d\n", c.TimeoutSec)
	fmt.Printf(" -retry_backoff_ms: %d\n", c.RetryBackoffMs)
	fmt.Printf(" -delay_ms: %d-%d\n", c.MinDelayMs, c.MaxDelayMs)
	if c.Debug {
		fmt.Printf(" -debug: %t\n", c.Debug)
		fmt.Printf(" -debug_dir: %s\n", c.DebugDir)
	}
	if c.DefaultURL != "" {
		fmt.Printf(" -url: %s\n", c.DefaultURL)
	}
	if c.ClearCheckpoint {
		fmt.Printf(" -clear_checkpoint: %t\n", c.ClearCheckpoint)
	}
	if c.CookieFile != "" {
		fmt.Printf(" -cookie_file: %s\n", c.CookieFile)
	}
}
