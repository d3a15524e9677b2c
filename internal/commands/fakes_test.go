package commands

import (
	"context"
	"fmt"
	"sync"
	"time"

	"chatfilter/internal/constants"
	"chatfilter/internal/filter"
	pkgerrors "chatfilter/pkg/errors"
)

// rulesRepository is a filter.Repository backed by a filter.Index.
type rulesRepository struct {
	mu     sync.Mutex
	rules  *filter.Index
	nextID int64
}

func newRulesRepository() *rulesRepository {
	return &rulesRepository{rules: filter.NewIndex(), nextID: 1}
}

func (r *rulesRepository) FindByKey(_ context.Context, key filter.Key) (*filter.FilterRule, error) {
	rule, ok := r.rules.Get(key)
	if !ok {
		return nil, nil
	}
	return rule, nil
}

func (r *rulesRepository) GetRule(_ context.Context, id int64) (*filter.FilterRule, error) {
	rule, ok := r.rules.GetByID(id)
	if !ok {
		return nil, nil
	}
	return rule, nil
}

func (r *rulesRepository) ListRules(_ context.Context) ([]filter.FilterRule, error) {
	return r.rules.List(), nil
}

func (r *rulesRepository) CreateRule(_ context.Context, rule *filter.FilterRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rule.Type == "" {
		rule.Type = constants.RuleTypeBlacklist
	}
	if _, exists := r.rules.Get(rule.Key()); exists {
		return pkgerrors.ErrConflict
	}

	now := time.Now()
	rule.ID = r.nextID
	rule.CreatedAt = now
	rule.UpdatedAt = now
	r.nextID++

	r.rules.Put(rule)
	return nil
}

func (r *rulesRepository) SetActive(_ context.Context, id int64, active bool) (*filter.FilterRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.rules.GetByID(id)
	if !ok {
		return nil, fmt.Errorf("rule %d not found", id)
	}
	rule.Active = active
	rule.UpdatedAt = time.Now()
	r.rules.Put(rule)
	return rule.Clone(), nil
}
