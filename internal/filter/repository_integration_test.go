//go:build integration

package filter

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatfilter/internal/broker"
	"chatfilter/internal/config"
	"chatfilter/internal/logger"
	"chatfilter/internal/testinfra"
	pkgerrors "chatfilter/pkg/errors"
	"chatfilter/pkg/models"
)

func TestPostgresRepository_CreateFindToggle(t *testing.T) {
	db := testinfra.Postgres(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rule := &FilterRule{
		Channel:  int64Ptr(1),
		Command:  int64Ptr(remindCommandID),
		IssuedBy: adminID,
		Active:   true,
		Response: ResponseNone,
	}
	require.NoError(t, repo.CreateRule(ctx, rule))
	assert.NotZero(t, rule.ID)
	assert.False(t, rule.CreatedAt.IsZero())

	found, err := repo.FindByKey(ctx, rule.Key())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, rule.ID, found.ID)
	assert.Nil(t, found.User)
	assert.Nil(t, found.Invocation)

	// A null field only matches null.
	missing, err := repo.FindByKey(ctx, NewScope(int64Ptr(1), int64Ptr(remindCommandID), nil, int64Ptr(testUserID)).Key())
	require.NoError(t, err)
	assert.Nil(t, missing)

	updated, err := repo.SetActive(ctx, rule.ID, false)
	require.NoError(t, err)
	assert.False(t, updated.Active)

	rules, err := repo.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.False(t, rules[0].Active)
}

func TestPostgresRepository_UniqueScope(t *testing.T) {
	db := testinfra.Postgres(t)
	repo := NewRepository(db)
	ctx := context.Background()

	newRule := func() *FilterRule {
		return &FilterRule{User: int64Ptr(testUserID), IssuedBy: adminID, Active: true, Response: ResponseNone}
	}

	require.NoError(t, repo.CreateRule(ctx, newRule()))
	err := repo.CreateRule(ctx, newRule())
	assert.True(t, pkgerrors.IsConflict(err), "got %v", err)
}

func TestPostgresRepository_ReasonRequired(t *testing.T) {
	db := testinfra.Postgres(t)
	repo := NewRepository(db)

	err := repo.CreateRule(context.Background(), &FilterRule{User: int64Ptr(testUserID), IssuedBy: ownerID, Active: true, Response: ResponseReason})
	assert.Error(t, err)
}

func TestStore_PostgresConcurrentInstances(t *testing.T) {
	db := testinfra.Postgres(t)
	redis := testinfra.Redis(t)
	ctx := context.Background()
	log := logger.NopLogger()

	// Two instances sharing the database and the redis lock.
	stores := []*Store{
		NewStore(NewRepository(db), log, WithLocker(NewRedisLocker(redis, time.Second, 5*time.Second, log))),
		NewStore(NewRepository(db), log, WithLocker(NewRedisLocker(redis, time.Second, 5*time.Second, log))),
	}
	scope := commandScope(mainChannel.ID, remindCommandID)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(store *Store) {
			defer wg.Done()
			out, err := store.ToggleOrCreate(ctx, scope, admin, adminGrant(), StateBan)
			if err == nil && out.Created {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(stores[i%2])
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	rules, err := NewRepository(db).ListRules(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestVersioningRepository(t *testing.T) {
	db := testinfra.Postgres(t)
	ctx := context.Background()
	versioning := NewVersioningRepository(db)
	store := NewStore(NewRepository(db), logger.NopLogger(), WithVersioning(versioning))
	scope := commandScope(mainChannel.ID, remindCommandID)

	out, err := store.ToggleOrCreate(ctx, scope, admin, adminGrant(), StateBan)
	require.NoError(t, err)
	_, err = store.ToggleOrCreate(ctx, scope, admin, adminGrant(), StateUnban)
	require.NoError(t, err)

	versions, err := store.Versions(ctx, out.Rule.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].Version)
	assert.Equal(t, adminID, versions[0].ChangedBy)

	logs, err := store.AuditLogs(ctx, &out.Rule.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "unban", logs[0].Action)
	assert.Equal(t, models.ActionCreate, logs[1].Action)
	assert.Nil(t, logs[1].OldValue)
	assert.Equal(t, true, logs[0].OldValue["active"])
	assert.Equal(t, false, logs[0].NewValue["active"])
}

func TestRedisLocker(t *testing.T) {
	client := testinfra.Redis(t)
	log := logger.NopLogger()
	ctx := context.Background()

	a := NewRedisLocker(client, time.Second, 100*time.Millisecond, log)
	b := NewRedisLocker(client, time.Second, 100*time.Millisecond, log)

	unlock, err := a.Lock(ctx, "scope")
	require.NoError(t, err)

	_, err = b.Lock(ctx, "scope")
	assert.ErrorIs(t, err, ErrLockTimeout)

	unlock()

	unlockB, err := b.Lock(ctx, "scope")
	require.NoError(t, err)
	// Releasing a lock held by someone else is a no-op.
	unlock()
	exists, err := client.Exists(ctx, "banlock:scope").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
	unlockB()
}

func TestKafkaRuleEventsRefreshOtherInstance(t *testing.T) {
	brokers := testinfra.Kafka(t)
	db := testinfra.Postgres(t)
	log := logger.NopLogger()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)

	kafkaCfg := config.KafkaConfig{
		Brokers: brokers,
		GroupID: "chatfilter-test-b",
		Retry:   config.RetryConfig{MaxAttempts: 1, Multiplier: 2},
	}
	topic := "ban_rule_updates"

	producer := broker.NewKafkaProducer(kafkaCfg, log)
	defer producer.Close()

	writer := NewStore(NewRepository(db), log, WithEventPublisher(NewConfigEventProducer(producer, topic)))
	reader := NewStore(NewRepository(db), log)

	consumer := broker.NewKafkaConsumer(kafkaCfg, log)
	defer func() {
		cancel()
		consumer.Close()
	}()
	go consumer.Consume(ctx, topic, NewReloader(reader, 0, log).HandleRuleEvent)

	out, err := writer.ToggleOrCreate(ctx, commandScope(mainChannel.ID, remindCommandID), admin, adminGrant(), StateBan)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, ok := reader.IsBanned(out.Rule.Scope())
		return ok
	}, 45*time.Second, 200*time.Millisecond)
}
