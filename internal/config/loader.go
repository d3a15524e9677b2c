package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"chatfilter/internal/constants"
)

func LoadConfig(configFile string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	viper.Reset()

	viper.SetConfigType("yaml")
	viper.SetConfigFile(configFile)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	applyDefaults(&cfg)

	if err := ValidateStatic(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv reads .env from the working directory if present. Variables
// already set in the environment win.
func loadDotEnv() error {
	err := godotenv.Load()
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load .env: %w", err)
}

func bindEnvVariables() {
	viper.BindEnv("broker.type", "BROKER_TYPE")
	viper.BindEnv("broker.kafka.brokers", "BROKER_KAFKA_BROKERS")
	viper.BindEnv("broker.kafka.group_id", "BROKER_KAFKA_GROUP_ID")
	viper.BindEnv("broker.kafka.config_update_topic", "BROKER_KAFKA_CONFIG_UPDATE_TOPIC")
	viper.BindEnv("broker.kafka.dlq_topic", "BROKER_KAFKA_DLQ_TOPIC")

	viper.BindEnv("database.postgres.host", "DATABASE_POSTGRES_HOST")
	viper.BindEnv("database.postgres.port", "DATABASE_POSTGRES_PORT")
	viper.BindEnv("database.postgres.user", "DATABASE_POSTGRES_USER")
	viper.BindEnv("database.postgres.password", "DATABASE_POSTGRES_PASSWORD")
	viper.BindEnv("database.postgres.dbname", "DATABASE_POSTGRES_DBNAME")
	viper.BindEnv("database.postgres.sslmode", "DATABASE_POSTGRES_SSLMODE")
	viper.BindEnv("database.run_migrations", "DATABASE_RUN_MIGRATIONS")

	viper.BindEnv("database.redis.host", "DATABASE_REDIS_HOST")
	viper.BindEnv("database.redis.port", "DATABASE_REDIS_PORT")
	viper.BindEnv("database.redis.password", "DATABASE_REDIS_PASSWORD")
	viper.BindEnv("database.redis.db", "DATABASE_REDIS_DB")

	viper.BindEnv("database.mongodb.uri", "DATABASE_MONGODB_URI")
	viper.BindEnv("database.mongodb.database", "DATABASE_MONGODB_DATABASE")

	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.read_timeout_seconds", "SERVER_READ_TIMEOUT_SECONDS")
	viper.BindEnv("server.write_timeout_seconds", "SERVER_WRITE_TIMEOUT_SECONDS")

	viper.BindEnv("logging.level", "LOGGING_LEVEL")
	viper.BindEnv("logging.format", "LOGGING_FORMAT")

	viper.BindEnv("bans.default_reason", "BANS_DEFAULT_REASON")
	viper.BindEnv("bans.command_prefix", "BANS_COMMAND_PREFIX")
	viper.BindEnv("bans.lock.backend", "BANS_LOCK_BACKEND")
	viper.BindEnv("bans.lock.ttl", "BANS_LOCK_TTL")
	viper.BindEnv("bans.reload.interval_seconds", "BANS_RELOAD_INTERVAL_SECONDS")

	viper.BindEnv("tracing.otlp.endpoint", "TRACING_OTLP_ENDPOINT")
	viper.BindEnv("tracing.otlp.insecure", "TRACING_OTLP_INSECURE")
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.service_name", "TRACING_SERVICE_NAME")
}

func applyEnvOverrides(cfg *Config) error {
	if brokersEnv := viper.GetString("BROKER_KAFKA_BROKERS"); brokersEnv != "" {
		brokers := strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
		if len(brokers) > 0 && brokers[0] != "" {
			cfg.Broker.Kafka.Brokers = brokers
		}
	}

	if otlpEndpoint := viper.GetString("TRACING_OTLP_ENDPOINT"); otlpEndpoint != "" {
		cfg.Tracing.OTLP.Endpoint = otlpEndpoint
	}

	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bans.DefaultReason == "" {
		cfg.Bans.DefaultReason = constants.DefaultChannelBanReason
	}
	if cfg.Bans.CommandPrefix == "" {
		cfg.Bans.CommandPrefix = constants.DefaultCommandPrefix
	}
	if cfg.Bans.Lock.Backend == "" {
		cfg.Bans.Lock.Backend = constants.LockBackendLocal
	}
	if cfg.Bans.Lock.TTL == 0 {
		cfg.Bans.Lock.TTL = constants.DefaultLockTTL
	}
	if cfg.Bans.Lock.WaitTimeout == 0 {
		cfg.Bans.Lock.WaitTimeout = constants.DefaultLockWaitTimeout
	}
	if cfg.Bans.Reload.IntervalSeconds == 0 {
		cfg.Bans.Reload.IntervalSeconds = constants.DefaultReloadIntervalSeconds
	}
	if cfg.Broker.Kafka.ConfigUpdateTopic == "" {
		cfg.Broker.Kafka.ConfigUpdateTopic = constants.DefaultConfigUpdateTopic
	}
	if cfg.Database.MongoDB.Database == "" {
		cfg.Database.MongoDB.Database = constants.DefaultMongoDBName
	}
	ensureBanCommand(&cfg.Bans)
}

// ensureBanCommand registers the ban command itself when the config does not
// list it, so it can be recognised as a ban target.
func ensureBanCommand(cfg *BansConfig) {
	var maxID int64
	for _, cmd := range cfg.Commands {
		if cmd.Name == constants.BanCommandName {
			return
		}
		if cmd.ID > maxID {
			maxID = cmd.ID
		}
	}
	cfg.Commands = append(cfg.Commands, CommandConfig{
		ID:      maxID + 1,
		Name:    constants.BanCommandName,
		Aliases: []string{constants.UnbanAlias},
	})
}
