package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	MongoURI   string `yaml:"mongo_uri"`
	MongoDB    string `yaml:"mongo_db"`
	Collection string `yaml:"mongo_collection"`
	CSVDir     string `yaml:"csv_dir"`
	BatchSize  int    `yaml:"batch_size"`
	Schedule   string `yaml:"import_schedule"`
}

func Default() Config {
	return Config{
		MongoURI:   "mongodb://localhost:27017/",
		MongoDB:    "financial_data",
		Collection: "ohlcvt_data",
		BatchSize:  1000,
	}
}

// Load builds the effective configuration: defaults, then the optional YAML
// file at path, then environment variable overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
		if cfg.BatchSize <= 0 {
			cfg.BatchSize = Default().BatchSize
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(c *Config) {
	c.MongoURI = getenv("MONGO_URI", c.MongoURI)
	c.MongoDB = getenv("MONGO_DB", c.MongoDB)
	c.Collection = getenv("MONGO_COLLECTION", c.Collection)
	c.CSVDir = getenv("CSV_DIR", c.CSVDir)
	c.Schedule = getenv("IMPORT_SCHEDULE", c.Schedule)

	if v := os.Getenv("BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.BatchSize = n
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
