package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"chatfilter/internal/constants"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// problems collects every invalid field instead of stopping at the first.
type problems []error

func (p *problems) add(field, format string, args ...interface{}) {
	*p = append(*p, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (p *problems) port(field string, port int) {
	if port < 1 || port > 65535 {
		p.add(field, "port must be between 1 and 65535, got %d", port)
	}
}

func (p *problems) required(field, value, what string) {
	if value == "" {
		p.add(field, "%s is required", what)
	}
}

var sslModes = []string{"disable", "allow", "prefer", "require", "verify-ca", "verify-full"}

// ValidateStatic checks what can be checked without touching the network.
func ValidateStatic(cfg *Config) error {
	var p problems

	p.server(cfg.Server)
	p.broker(cfg.Broker)
	p.postgres(cfg.Database.Postgres)
	if r := cfg.Database.Redis; r.Host != "" || r.Port > 0 {
		p.redis(r)
	}
	if cfg.Database.MongoDB.URI != "" {
		p.mongo(cfg.Database.MongoDB)
	}
	p.bans(cfg.Bans, cfg.Database.Redis)

	return errors.Join(p...)
}

func (p *problems) server(cfg ServerConfig) {
	p.port("server.port", cfg.Port)
	if cfg.ReadTimeoutSeconds <= 0 {
		p.add("server.read_timeout_seconds", "read timeout must be positive")
	}
	if cfg.WriteTimeoutSeconds <= 0 {
		p.add("server.write_timeout_seconds", "write timeout must be positive")
	}
}

func (p *problems) broker(cfg BrokerConfig) {
	switch cfg.Type {
	case "":
	case "kafka":
		p.kafka(cfg.Kafka)
	default:
		p.add("broker.type", "unknown broker type: %s (supported: kafka)", cfg.Type)
	}
}

func (p *problems) kafka(cfg KafkaConfig) {
	if len(cfg.Brokers) == 0 {
		p.add("broker.kafka.brokers", "at least one Kafka broker is required")
	}
	for i, addr := range cfg.Brokers {
		if addr == "" {
			p.add(fmt.Sprintf("broker.kafka.brokers[%d]", i), "broker address cannot be empty")
		}
	}
	p.required("broker.kafka.group_id", cfg.GroupID, "Kafka consumer group ID")

	r := cfg.Retry
	if r.MaxAttempts < 0 {
		p.add("broker.kafka.retry.max_attempts", "max_attempts must be non-negative")
	}
	if r.InitialInterval < 0 || r.MaxInterval < 0 {
		p.add("broker.kafka.retry", "retry intervals must be non-negative")
	}
	if r.MaxInterval > 0 && r.InitialInterval > r.MaxInterval {
		p.add("broker.kafka.retry.max_interval", "max_interval must be greater than or equal to initial_interval")
	}
	if r.Multiplier < 0 {
		p.add("broker.kafka.retry.multiplier", "multiplier must be non-negative")
	}
}

func (p *problems) postgres(cfg PostgresConfig) {
	if cfg.Host == "" {
		p.add("database.postgres.host", "PostgreSQL host is required")
		return
	}
	p.port("database.postgres.port", cfg.Port)
	p.required("database.postgres.user", cfg.User, "PostgreSQL user")
	p.required("database.postgres.dbname", cfg.DBName, "PostgreSQL database name")

	if mode := strings.ToLower(cfg.SSLMode); mode != "" && !slices.Contains(sslModes, mode) {
		p.add("database.postgres.sslmode", "invalid SSL mode: %s (valid: %s)", cfg.SSLMode, strings.Join(sslModes, ", "))
	}
}

func (p *problems) redis(cfg RedisConfig) {
	p.required("database.redis.host", cfg.Host, "Redis host")
	p.port("database.redis.port", cfg.Port)
}

func (p *problems) mongo(cfg MongoDBConfig) {
	if !strings.HasPrefix(cfg.URI, "mongodb://") && !strings.HasPrefix(cfg.URI, "mongodb+srv://") {
		p.add("database.mongodb.uri", "MongoDB URI must start with mongodb:// or mongodb+srv://")
	}
	p.required("database.mongodb.database", cfg.Database, "MongoDB database name")
}

func (p *problems) bans(cfg BansConfig, redis RedisConfig) {
	switch strings.ToLower(cfg.Lock.Backend) {
	case constants.LockBackendLocal:
	case constants.LockBackendRedis:
		if redis.Host == "" {
			p.add("bans.lock.backend", "redis lock backend requires database.redis to be configured")
		}
	default:
		p.add("bans.lock.backend", "invalid lock backend: %s (valid: local, redis)", cfg.Lock.Backend)
	}

	if cfg.Lock.TTL <= 0 {
		p.add("bans.lock.ttl", "lock TTL must be positive")
	}

	seen := make(map[int64]bool, len(cfg.Commands))
	for i, cmd := range cfg.Commands {
		p.required(fmt.Sprintf("bans.commands[%d].name", i), cmd.Name, "command name")
		switch {
		case cmd.ID <= 0:
			p.add(fmt.Sprintf("bans.commands[%d].id", i), "command ID must be positive")
		case seen[cmd.ID]:
			p.add(fmt.Sprintf("bans.commands[%d].id", i), "duplicate command ID %d", cmd.ID)
		}
		seen[cmd.ID] = true
	}
}
