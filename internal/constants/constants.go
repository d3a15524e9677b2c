package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
	KafkaMaxWait      = 500 * time.Millisecond
)

const (
	DefaultConfigUpdateTopic = "ban_rule_updates"
)

const (
	DefaultMongoDBName      = "chatfilter"
	UsersCollection         = "users"
	CacheKeyPrefixBanLock   = "banlock:"
	DefaultCommandPrefix    = "$"
	DefaultChannelBanReason = "Banned in this channel."
)

const (
	LockBackendLocal = "local"
	LockBackendRedis = "redis"

	DefaultLockTTL         = 5 * time.Second
	DefaultLockWaitTimeout = 3 * time.Second
	LockRetryInterval      = 25 * time.Millisecond
)

const (
	DefaultReloadIntervalSeconds = 60
	ReloadJitterPercent          = 10
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

const (
	BanCommandName = "ban"
	UnbanAlias     = "unban"
)

const (
	RuleTypeBlacklist = "Blacklist"
	ServiceName       = "filter-service"
)
