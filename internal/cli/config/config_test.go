package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir moves into a fresh directory so no stray roastery.yaml is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("database-url", "", "")
	fs.String("log-level", "", "")
	fs.String("log-format", "", "")
	fs.StringP("output", "o", "", "")
	fs.String("addr", "", "")
	fs.Duration("shutdown-timeout", 0, "")
	fs.String("mapping", "", "")
	return fs
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t)
	defer ResetConfig()

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoad_Precedence(t *testing.T) {
	dir := chdir(t)
	defer ResetConfig()

	yamlCfg := `database_url: postgres://file/db
archive: shop.zip
output: json
log:
  level: debug
  format: json
http:
  addr: ":9000"
  shutdown_timeout: 30s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "roastery.yaml"), []byte(yamlCfg), 0o600))
	t.Setenv("ROASTERY_DATABASE_URL", "mysql://env/db")
	t.Setenv("ROASTERY_HTTP_ADDR", ":9100")

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--addr", ":9200", "--log-level", "warn"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)

	assert.Equal(t, "roastery.yaml", GetConfigFileUsed())
	assert.Equal(t, "mysql://env/db", cfg.DatabaseURL, "env beats file")
	assert.Equal(t, ":9200", cfg.HTTP.Addr, "flag beats env")
	assert.Equal(t, "warn", cfg.Log.Level, "flag beats file")
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "shop.zip", cfg.Archive)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ShutdownTimeout)
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	chdir(t)
	defer ResetConfig()
	t.Setenv("ROASTERY_OUTPUT", "markdown")

	flags := testFlags()
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.OutputFormat)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTP.Addr)
}

func TestLoad_DurationFlag(t *testing.T) {
	chdir(t)
	defer ResetConfig()

	flags := testFlags()
	require.NoError(t, flags.Parse([]string{"--shutdown-timeout", "2s"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.HTTP.ShutdownTimeout)
}

func TestLoad_ExplicitFile(t *testing.T) {
	dir := chdir(t)
	defer ResetConfig()

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mapping: rules.yaml\n"), 0o600))

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "rules.yaml", cfg.Mapping)
	assert.Equal(t, path, GetConfigFileUsed())

	_, err = Load(filepath.Join(dir, "missing.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_ExpandsDatabaseURL(t *testing.T) {
	chdir(t)
	defer ResetConfig()
	t.Setenv("ROASTERY_DATABASE_URL", "postgres://app:${ROASTERY_TEST_SECRET}@db/shop")
	t.Setenv("ROASTERY_TEST_SECRET", "s3cret")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:s3cret@db/shop", cfg.DatabaseURL)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"empty database url", func(c *Config) { c.DatabaseURL = "" }, "database_url is required"},
		{"bad output", func(c *Config) { c.OutputFormat = "xml" }, "invalid output format"},
		{"bad log format", func(c *Config) { c.Log.Format = "logfmt" }, "invalid log format"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"negative timeout", func(c *Config) { c.HTTP.ShutdownTimeout = -time.Second }, "must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "database_url", envKey("ROASTERY_DATABASE_URL"))
	assert.Equal(t, "log.level", envKey("ROASTERY_LOG_LEVEL"))
	assert.Equal(t, "http.shutdown_timeout", envKey("ROASTERY_HTTP_SHUTDOWN_TIMEOUT"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "rows", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"rows":3`)

	_, err = NewLogger(LogConfig{Level: "verbose"}, &buf)
	assert.Error(t, err)
}

func TestLoggerContext(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()))

	logger, err := NewLogger(LogConfig{Level: "info", Format: "text"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Same(t, logger, GetLogger(WithLogger(context.Background(), logger)))
}
