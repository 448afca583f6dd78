package configparser

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name    string        `env:"CPTEST_APP_NAME" default:"rideshare"`
	Port    int           `env:"CPTEST_APP_PORT" default:"8080"`
	Debug   bool          `env:"CPTEST_APP_DEBUG" default:"false"`
	Timeout time.Duration `env:"CPTEST_APP_TIMEOUT" default:"5s"`
	Storage struct {
		Driver string `env:"CPTEST_STORAGE_DRIVER" default:"memory"`
		Redis  struct {
			Addr string `env:"CPTEST_STORAGE_REDIS_ADDR"`
		}
	}
}

func TestParseEnvDefaults(t *testing.T) {
	var cfg testConfig
	require.NoError(t, ParseEnv(&cfg))

	assert.Equal(t, "rideshare", cfg.Name)
	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.Debug)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Empty(t, cfg.Storage.Redis.Addr)
}

func TestLoadAndParseYaml(t *testing.T) {
	t.Setenv("CPTEST_APP_PORT", "9090")
	t.Setenv("CPTEST_REDIS_HOST", "cache.local")

	doc := `
cptest:
  app:
    name: "ledger"
    port: 7000
    debug: true
  storage:
    driver: redis
    redis:
      addr: ${CPTEST_REDIS_HOST:-localhost}:6379
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	t.Cleanup(func() {
		for _, k := range []string{"CPTEST_APP_NAME", "CPTEST_APP_DEBUG", "CPTEST_STORAGE_DRIVER", "CPTEST_STORAGE_REDIS_ADDR"} {
			os.Unsetenv(k)
		}
	})

	var cfg testConfig
	require.NoError(t, LoadAndParseYaml(path, &cfg))

	assert.Equal(t, "ledger", cfg.Name)
	assert.Equal(t, 9090, cfg.Port, "environment wins over the file")
	assert.True(t, cfg.Debug)
	assert.Equal(t, "redis", cfg.Storage.Driver)
	assert.Equal(t, "cache.local:6379", cfg.Storage.Redis.Addr)
}

func TestParseEnvRejectsNonPointer(t *testing.T) {
	assert.Error(t, ParseEnv(testConfig{}))
}

func TestLoadYamlFileNoPath(t *testing.T) {
	assert.ErrorIs(t, LoadYamlFile(""), ErrNoFilePath)
}
