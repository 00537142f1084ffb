package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Execution struct {
		Workers int           `yaml:"workers"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"execution"`
	Adaptation struct {
		MaxPermutations int `yaml:"max_permutations"` // adaptations tried per implementation
		CacheSize       int `yaml:"cache_size"`
		MaxParamsLength int `yaml:"max_params_length"`
		MaxOverfit      int `yaml:"max_overfit"`
	} `yaml:"adaptation"`
	Record struct {
		SerializeInputs     *bool `yaml:"serialize_inputs"`
		SerializeOperations *bool `yaml:"serialize_operations"`
	} `yaml:"record"`
	Minimize struct {
		DropFailedSequences bool `yaml:"drop_failed_sequences"`
		MinimizeSequences   bool `yaml:"minimize_sequences"`
	} `yaml:"minimize"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Storage.Path == "" {
		c.Storage.Path = "arena.db"
	}
	if c.Execution.Workers <= 0 {
		c.Execution.Workers = 4
	}
	if c.Execution.Timeout <= 0 {
		c.Execution.Timeout = 30 * time.Second
	}
	if c.Adaptation.MaxPermutations <= 0 {
		c.Adaptation.MaxPermutations = 1
	}
	if c.Adaptation.CacheSize <= 0 {
		c.Adaptation.CacheSize = 256
	}
	if c.Adaptation.MaxParamsLength <= 0 {
		c.Adaptation.MaxParamsLength = 5
	}
	if c.Adaptation.MaxOverfit <= 0 {
		c.Adaptation.MaxOverfit = 2
	}
	if c.Record.SerializeInputs == nil {
		c.Record.SerializeInputs = boolPtr(true)
	}
	if c.Record.SerializeOperations == nil {
		c.Record.SerializeOperations = boolPtr(true)
	}
}

func boolPtr(b bool) *bool { return &b }

// LoadConfig reads path, applies defaults and then ARENA_* environment
// overrides. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config
	var cfg Config
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(file, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	cfg.applyDefaults()

	// 3. Override with Environment Variables if present
	if db := os.Getenv("ARENA_DB"); db != "" {
		cfg.Storage.Path = db
	}
	if v := os.Getenv("ARENA_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid ARENA_WORKERS %q", v)
		}
		cfg.Execution.Workers = n
	}
	if v := os.Getenv("ARENA_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ARENA_TIMEOUT %q: %w", v, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("invalid ARENA_TIMEOUT %q: must be positive", v)
		}
		cfg.Execution.Timeout = d
	}
	if v := os.Getenv("ARENA_MAX_PERMUTATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid ARENA_MAX_PERMUTATIONS %q", v)
		}
		cfg.Adaptation.MaxPermutations = n
	}

	return &cfg, nil
}
