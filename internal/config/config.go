// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type AIConfig struct {
	OpenAIKey       string `yaml:"openai_key"`
	GeminiKey       string `yaml:"gemini_key"`
	CompatKey       string `yaml:"compat_key"`
	CompatBaseURL   string `yaml:"compat_base_url"` // OpenAI-compatible gateway
	Transport       string `yaml:"transport"`       // responses | chat | compat | gemini
	DefaultModel    string `yaml:"default_model"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
	ConcurrentLimit int    `yaml:"concurrent_limit"` // max concurrent upstream streams
}

type JobsConfig struct {
	TTL          time.Duration `yaml:"ttl"`           // job record lifetime
	ReapInterval time.Duration `yaml:"reap_interval"` // reaper cadence
	MaxWallClock time.Duration `yaml:"max_wall_clock"`
	ChunkSize    int           `yaml:"chunk_size"`     // simulated delivery window
	ChunkDelay   time.Duration `yaml:"chunk_delay"`    // simulated delivery interval
}

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	AI     AIConfig     `yaml:"ai"`
	Jobs   JobsConfig   `yaml:"jobs"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file (missing file is fine, defaults apply) and
// then lets the environment override the credential and listen port.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// environment overrides
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.AI.OpenAIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.AI.GeminiKey = v
	}
	if v := os.Getenv("COMPAT_API_KEY"); v != "" {
		cfg.AI.CompatKey = v
	}
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PORT: %w", err)
		}
		cfg.Server.Port = p
	}

	// defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.AI.DefaultModel == "" {
		cfg.AI.DefaultModel = "gpt-4o-mini"
	}
	if cfg.AI.MaxOutputTokens <= 0 {
		cfg.AI.MaxOutputTokens = 4096
	}
	if cfg.AI.ConcurrentLimit <= 0 {
		cfg.AI.ConcurrentLimit = 16
	}
	if cfg.Jobs.TTL <= 0 {
		cfg.Jobs.TTL = 15 * time.Minute
	}
	if cfg.Jobs.ReapInterval <= 0 {
		cfg.Jobs.ReapInterval = 2 * time.Minute
	}
	if cfg.Jobs.MaxWallClock <= 0 {
		cfg.Jobs.MaxWallClock = 3 * time.Minute
	}
	if cfg.Jobs.ChunkSize <= 0 {
		cfg.Jobs.ChunkSize = 150
	}
	if cfg.Jobs.ChunkDelay <= 0 {
		cfg.Jobs.ChunkDelay = 300 * time.Millisecond
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
