package registry

import (
	"context"

	"chatfilter/internal/config"
	"chatfilter/internal/filter"
	"chatfilter/pkg/circuitbreaker"
)

func newBreaker(name string, cfg config.CircuitBreakerConfig) *circuitbreaker.Wrapper {
	if !cfg.Enabled {
		return nil
	}
	return circuitbreaker.NewWrapper(circuitbreaker.DefaultConfig(name).WithOverrides(
		cfg.MaxRequests, cfg.Interval, cfg.Timeout, cfg.FailureRatio, cfg.MinRequests,
	))
}

type roles struct {
	owner      bool
	ambassador bool
}

// BreakerChannelStore guards a ChannelStore with a circuit breaker.
type BreakerChannelStore struct {
	next ChannelStore
	cb   *circuitbreaker.Wrapper
}

func NewBreakerChannelStore(next ChannelStore, cfg config.CircuitBreakerConfig) *BreakerChannelStore {
	return &BreakerChannelStore{next: next, cb: newBreaker("postgres-channels", cfg)}
}

func (s *BreakerChannelStore) GetChannel(ctx context.Context, nameOrID string) (*filter.Channel, error) {
	return circuitbreaker.Call(ctx, s.cb, func() (*filter.Channel, error) {
		return s.next.GetChannel(ctx, nameOrID)
	})
}

func (s *BreakerChannelStore) ChannelRoles(ctx context.Context, channelID, userID int64) (bool, bool, error) {
	r, err := circuitbreaker.Call(ctx, s.cb, func() (roles, error) {
		owner, ambassador, err := s.next.ChannelRoles(ctx, channelID, userID)
		return roles{owner: owner, ambassador: ambassador}, err
	})
	return r.owner, r.ambassador, err
}

// BreakerUserStore guards a UserStore with a circuit breaker.
type BreakerUserStore struct {
	next UserStore
	cb   *circuitbreaker.Wrapper
}

func NewBreakerUserStore(next UserStore, cfg config.CircuitBreakerConfig) *BreakerUserStore {
	return &BreakerUserStore{next: next, cb: newBreaker("mongodb-users", cfg)}
}

func (s *BreakerUserStore) GetUser(ctx context.Context, nameOrID string) (*filter.User, error) {
	return circuitbreaker.Call(ctx, s.cb, func() (*filter.User, error) {
		return s.next.GetUser(ctx, nameOrID)
	})
}

func (s *BreakerUserStore) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	return circuitbreaker.Call(ctx, s.cb, func() (bool, error) {
		return s.next.IsAdmin(ctx, userID)
	})
}
