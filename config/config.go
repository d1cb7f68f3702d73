package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"heartfelt/logger"
	"heartfelt/ml"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"http"`
	Log logger.Config `yaml:"log"`
	ML  struct {
		ModelType  string `yaml:"model_type"`
		ModelPath  string `yaml:"model_path"`
		CacheSize  int    `yaml:"cache_size"`
		WatchModel bool   `yaml:"watch_model"`
	} `yaml:"ml"`
}

// Default returns the configuration used for keys missing from the file.
func Default() *Config {
	cfg := &Config{}
	cfg.Http.Port = 8080
	cfg.Http.Timeout = 10 * time.Second
	cfg.Http.MaxBodyBytes = 64 << 10
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	cfg.Log.MaxSizeMB = 50
	cfg.Log.MaxBackups = 3
	cfg.Log.MaxAgeDays = 14
	cfg.ML.ModelType = ml.ModelTypeDecisionTree
	cfg.ML.ModelPath = "models/heart_tree.json"
	cfg.ML.CacheSize = 1024
	return cfg
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cfg := Default()
	if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Http.Port <= 0 || c.Http.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.Http.Port)
	}
	if c.Http.Timeout <= 0 {
		return errors.New("http.timeout must be positive")
	}
	if c.Http.MaxBodyBytes <= 0 {
		return errors.New("http.max_body_bytes must be positive")
	}
	if c.ML.ModelPath == "" {
		return errors.New("ml.model_path is required")
	}
	switch c.ML.ModelType {
	case ml.ModelTypeDecisionTree, ml.ModelTypeRandomForest:
	default:
		return fmt.Errorf("ml.model_type %q is not supported", c.ML.ModelType)
	}
	if c.ML.CacheSize < 0 {
		return errors.New("ml.cache_size must not be negative")
	}
	return nil
}
