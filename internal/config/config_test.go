package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mongodb://localhost:27017/", cfg.MongoURI)
	assert.Equal(t, "financial_data", cfg.MongoDB)
	assert.Equal(t, "ohlcvt_data", cfg.Collection)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Empty(t, cfg.CSVDir)
	assert.Empty(t, cfg.Schedule)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loader.yaml")
	err := os.WriteFile(path, []byte(
		"mongo_uri: mongodb://db:27017/\n"+
			"mongo_db: markets\n"+
			"csv_dir: /data/klines\n"+
			"batch_size: 250\n"), 0o644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mongodb://db:27017/", cfg.MongoURI)
	assert.Equal(t, "markets", cfg.MongoDB)
	assert.Equal(t, "/data/klines", cfg.CSVDir)
	assert.Equal(t, 250, cfg.BatchSize)
	// Untouched keys keep their defaults.
	assert.Equal(t, "ohlcvt_data", cfg.Collection)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loader.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mongo_db: from_file\n"), 0o644))

	t.Setenv("MONGO_DB", "from_env")
	t.Setenv("BATCH_SIZE", "50")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.MongoDB)
	assert.Equal(t, 50, cfg.BatchSize)
}

func TestLoad_NonPositiveBatchSizeInFileIgnored(t *testing.T) {
	for _, size := range []string{"-1", "0"} {
		path := filepath.Join(t.TempDir(), "loader.yaml")
		require.NoError(t, os.WriteFile(path, []byte("batch_size: "+size+"\n"), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 1000, cfg.BatchSize)
	}
}

func TestLoad_InvalidBatchSizeEnvIgnored(t *testing.T) {
	t.Setenv("BATCH_SIZE", "not-a-number")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.BatchSize)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loader.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mongo_db: [unclosed\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
