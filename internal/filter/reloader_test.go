package filter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatfilter/internal/logger"
	"chatfilter/pkg/models"
)

func TestReloader_HandleRuleEvent(t *testing.T) {
	repo := newMemoryRepository()
	ctx := context.Background()
	store := NewStore(repo, logger.NopLogger())
	r := NewReloader(store, 0, logger.NopLogger())

	// Written by another instance.
	rule := &FilterRule{User: int64Ptr(testUserID), IssuedBy: adminID, Active: true, Response: ResponseNone}
	require.NoError(t, repo.CreateRule(ctx, rule))

	require.NoError(t, r.HandleRuleEvent(ctx, *ruleEvent(models.ActionCreate, rule.ID)))
	_, banned := store.IsBanned(NewScope(nil, nil, nil, int64Ptr(testUserID)))
	assert.True(t, banned)

	_, err := repo.SetActive(ctx, rule.ID, false)
	require.NoError(t, err)
	require.NoError(t, r.HandleRuleEvent(ctx, *ruleEvent(models.ActionReload, 0)))
	_, banned = store.IsBanned(NewScope(nil, nil, nil, int64Ptr(testUserID)))
	assert.False(t, banned)
}

func ruleEvent(action string, ruleID int64) *models.RuleEvent {
	return models.NewRuleEventBuilder().
		WithID("evt-1").
		WithSource("other-instance").
		WithRule(ruleID, true).
		WithAction(action).
		Build()
}

func TestReloader_DropsInvalidEvents(t *testing.T) {
	repo := newMemoryRepository()
	ctx := context.Background()
	store := NewStore(repo, logger.NopLogger())
	r := NewReloader(store, 0, logger.NopLogger())

	rule := &FilterRule{User: int64Ptr(testUserID), IssuedBy: adminID, Active: true, Response: ResponseNone}
	require.NoError(t, repo.CreateRule(ctx, rule))

	noID := ruleEvent(models.ActionCreate, rule.ID)
	noID.ID = ""
	noSource := ruleEvent(models.ActionCreate, rule.ID)
	noSource.Source = ""
	unknownAction := ruleEvent("explode", rule.ID)
	noRule := ruleEvent(models.ActionBan, 0)

	for _, event := range []*models.RuleEvent{noID, noSource, unknownAction, noRule} {
		require.NoError(t, r.HandleRuleEvent(ctx, *event))
	}

	_, banned := store.IsBanned(NewScope(nil, nil, nil, int64Ptr(testUserID)))
	assert.False(t, banned)
	assert.Empty(t, store.List())
}

func TestReloader_IgnoresOtherEvents(t *testing.T) {
	store := NewStore(failingRepository{newMemoryRepository()}, logger.NopLogger())
	r := NewReloader(store, 0, logger.NopLogger())

	assert.NoError(t, r.HandleRuleEvent(context.Background(), models.RuleEvent{EventType: "something_else"}))
}

func TestReloader_StartStopsOnCancel(t *testing.T) {
	store := NewStore(newMemoryRepository(), logger.NopLogger())
	r := NewReloader(store, 10*time.Millisecond, logger.NopLogger())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := r.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestReloader_NextIsJittered(t *testing.T) {
	r := NewReloader(nil, time.Second, logger.NopLogger())

	for i := 0; i < 20; i++ {
		next := r.next()
		assert.GreaterOrEqual(t, next, time.Second)
		assert.Less(t, next, 1100*time.Millisecond)
	}
}
