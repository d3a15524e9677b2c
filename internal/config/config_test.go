package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatfilter/internal/constants"
)

const baseConfig = `
server:
  port: 8080
  read_timeout_seconds: 10
  write_timeout_seconds: 10
database:
  postgres:
    host: localhost
    port: 5432
    user: chatfilter
    password: secret
    dbname: chatfilter
    sslmode: disable
logging:
  level: info
bans:
  commands:
    - id: 1
      name: ban
      aliases: [unban]
    - id: 2
      name: remind
      aliases: [remindme]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	t.Chdir(dir)
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, baseConfig))
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultChannelBanReason, cfg.Bans.DefaultReason)
	assert.Equal(t, constants.DefaultCommandPrefix, cfg.Bans.CommandPrefix)
	assert.Equal(t, constants.LockBackendLocal, cfg.Bans.Lock.Backend)
	assert.Equal(t, constants.DefaultLockTTL, cfg.Bans.Lock.TTL)
	assert.Equal(t, constants.DefaultConfigUpdateTopic, cfg.Broker.Kafka.ConfigUpdateTopic)
	require.Len(t, cfg.Bans.Commands, 2)
	assert.Equal(t, []string{"unban"}, cfg.Bans.Commands[0].Aliases)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := writeConfig(t, baseConfig)
	t.Setenv("DATABASE_POSTGRES_HOST", "db.internal")
	t.Setenv("BANS_DEFAULT_REASON", "Not here.")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, "Not here.", cfg.Bans.DefaultReason)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	path := writeConfig(t, baseConfig)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), ".env"), []byte("BANS_COMMAND_PREFIX=!\n"), 0o600))
	// godotenv does not override variables that are already set.
	t.Setenv("BANS_COMMAND_PREFIX", "")
	require.NoError(t, os.Unsetenv("BANS_COMMAND_PREFIX"))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "!", cfg.Bans.CommandPrefix)
}

func TestValidateStatic(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 8080, ReadTimeoutSeconds: 10, WriteTimeoutSeconds: 10},
			Database: DatabaseConfig{
				Postgres: PostgresConfig{Host: "localhost", Port: 5432, User: "u", DBName: "d"},
			},
			Bans: BansConfig{
				Lock:     LockConfig{Backend: "local", TTL: time.Second},
				Commands: []CommandConfig{{ID: 1, Name: "ban"}},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"redis lock without redis", func(c *Config) { c.Bans.Lock.Backend = "redis" }, "bans.lock.backend"},
		{"unknown lock backend", func(c *Config) { c.Bans.Lock.Backend = "etcd" }, "bans.lock.backend"},
		{"duplicate command id", func(c *Config) {
			c.Bans.Commands = append(c.Bans.Commands, CommandConfig{ID: 1, Name: "remind"})
		}, "bans.commands[1].id"},
		{"unknown broker", func(c *Config) { c.Broker.Type = "rabbitmq" }, "broker.type"},
		{"kafka without brokers", func(c *Config) { c.Broker.Type = "kafka" }, "broker.kafka.brokers"},
		{"missing postgres", func(c *Config) { c.Database.Postgres = PostgresConfig{} }, "database.postgres.host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := ValidateStatic(cfg)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestEnsureBanCommand(t *testing.T) {
	cfg := BansConfig{Commands: []CommandConfig{{ID: 4, Name: "remind"}}}

	ensureBanCommand(&cfg)

	require.Len(t, cfg.Commands, 2)
	assert.Equal(t, CommandConfig{ID: 5, Name: "ban", Aliases: []string{"unban"}}, cfg.Commands[1])

	ensureBanCommand(&cfg)
	assert.Len(t, cfg.Commands, 2)
}

func TestValidateStatic_ReportsEveryProblem(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 0, ReadTimeoutSeconds: 10, WriteTimeoutSeconds: 10},
		Bans:   BansConfig{Lock: LockConfig{Backend: "etcd", TTL: time.Second}},
	}

	err := ValidateStatic(cfg)
	require.Error(t, err)

	for _, field := range []string{"server.port", "database.postgres.host", "bans.lock.backend"} {
		assert.Contains(t, err.Error(), field)
	}
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestLoadConfig_Sections(t *testing.T) {
	body := baseConfig + `
circuit_breaker:
  enabled: true
  max_requests: 3
api:
  rate_limit:
    enabled: true
    rps: 5
    burst: 10
`
	cfg, err := LoadConfig(writeConfig(t, body))
	require.NoError(t, err)

	assert.True(t, cfg.CircuitBreaker.Enabled)
	assert.Equal(t, uint32(3), cfg.CircuitBreaker.MaxRequests)
	assert.True(t, cfg.API.RateLimit.Enabled)
	assert.Equal(t, 10, cfg.API.RateLimit.Burst)
}
