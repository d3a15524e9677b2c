package filter

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chatfilter/internal/constants"
	"chatfilter/internal/logger"
	pkgerrors "chatfilter/pkg/errors"
)

const (
	banCommandID    int64 = 10
	remindCommandID int64 = 20
	pingCommandID   int64 = 30

	adminID    int64 = 100
	ownerID    int64 = 200
	testUserID int64 = 300
	ambID      int64 = 400
	strangerID int64 = 500
)

var (
	mainChannel  = Channel{ID: 1, Name: "main", Platform: "twitch"}
	otherChannel = Channel{ID: 2, Name: "other", Platform: "twitch"}

	admin    = Actor{ID: adminID, Name: "admin"}
	owner    = Actor{ID: ownerID, Name: "owner"}
	amb      = Actor{ID: ambID, Name: "amb"}
	stranger = Actor{ID: strangerID, Name: "stranger"}
)

var errRegistryDown = errors.New("registry unavailable")

type fakeRegistry struct {
	channels []Channel
	commands []Command
	users    []User
	fail     bool
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		channels: []Channel{mainChannel, otherChannel},
		commands: []Command{
			{ID: banCommandID, Name: "ban", Aliases: []string{"unban"}},
			{ID: remindCommandID, Name: "remind", Aliases: []string{"remindme"}},
			{ID: pingCommandID, Name: "ping"},
		},
		users: []User{
			{ID: adminID, Name: "admin"},
			{ID: ownerID, Name: "owner"},
			{ID: testUserID, Name: "test"},
			{ID: ambID, Name: "amb"},
			{ID: strangerID, Name: "stranger"},
		},
	}
}

func (f *fakeRegistry) GetChannel(_ context.Context, nameOrID string) (*Channel, error) {
	if f.fail {
		return nil, errRegistryDown
	}
	for _, c := range f.channels {
		if strings.EqualFold(c.Name, nameOrID) || strconv.FormatInt(c.ID, 10) == nameOrID {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeRegistry) GetCommand(_ context.Context, nameOrInvocation string) (*Command, error) {
	if f.fail {
		return nil, errRegistryDown
	}
	for _, c := range f.commands {
		if c.Name == nameOrInvocation {
			c := c
			return &c, nil
		}
		for _, alias := range c.Aliases {
			if alias == nameOrInvocation {
				c := c
				return &c, nil
			}
		}
	}
	return nil, nil
}

func (f *fakeRegistry) GetUser(_ context.Context, nameOrID string) (*User, error) {
	if f.fail {
		return nil, errRegistryDown
	}
	for _, u := range f.users {
		if strings.EqualFold(u.Name, nameOrID) || strconv.FormatInt(u.ID, 10) == nameOrID {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

// fakePermissions grants admin globally and owner/ambassador on the main
// channel only.
type fakePermissions struct {
	fail bool
}

func (f *fakePermissions) Permissions(_ context.Context, actor Actor, channel Channel) (Permissions, error) {
	if f.fail {
		return Permissions{}, errRegistryDown
	}
	var p Permissions
	p.Admin = actor.ID == adminID
	if channel.ID == mainChannel.ID {
		p.Owner = actor.ID == ownerID
		p.Ambassador = actor.ID == ambID
	}
	return p, nil
}

type recordingPublisher struct {
	mu      sync.Mutex
	actions []string
	err     error
}

func (p *recordingPublisher) PublishRuleChange(_ context.Context, action string, _ *FilterRule, _ int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.actions = append(p.actions, action)
	return p.err
}

func (p *recordingPublisher) Actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.actions...)
}

type failingRepository struct {
	*memoryRepository
}

func (r failingRepository) FindByKey(context.Context, Key) (*FilterRule, error) {
	return nil, errors.New("connection refused")
}

type testEnv struct {
	registry    *fakeRegistry
	permissions *fakePermissions
	repo        *memoryRepository
	publisher   *recordingPublisher
	store       *Store
	service     *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		registry:    newFakeRegistry(),
		permissions: &fakePermissions{},
		repo:        newMemoryRepository(),
		publisher:   &recordingPublisher{},
	}
	log := logger.NopLogger()

	env.store = NewStore(env.repo, log, WithEventPublisher(env.publisher))
	env.service = NewService(
		NewResolver(env.registry, env.registry, env.registry, banCommandID),
		NewAuthorizer(env.permissions, ""),
		env.store,
		log,
	)
	require.NoError(t, env.store.Reload(context.Background(), "test"))
	return env
}

func int64Ptr(v int64) *int64 {
	return &v
}

func strPtr(v string) *string {
	return &v
}

// memoryRepository keeps rules in an Index. Duplicate scopes are rejected
// with ErrConflict like the unique index does in Postgres.
type memoryRepository struct {
	mu     sync.Mutex
	index  *Index
	nextID int64
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{index: NewIndex(), nextID: 1}
}

func (r *memoryRepository) FindByKey(_ context.Context, key Key) (*FilterRule, error) {
	rule, ok := r.index.Get(key)
	if !ok {
		return nil, nil
	}
	return rule, nil
}

func (r *memoryRepository) GetRule(_ context.Context, id int64) (*FilterRule, error) {
	rule, ok := r.index.GetByID(id)
	if !ok {
		return nil, nil
	}
	return rule, nil
}

func (r *memoryRepository) ListRules(_ context.Context) ([]FilterRule, error) {
	return r.index.List(), nil
}

func (r *memoryRepository) CreateRule(_ context.Context, rule *FilterRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rule.Type == "" {
		rule.Type = constants.RuleTypeBlacklist
	}
	if _, exists := r.index.Get(rule.Key()); exists {
		return pkgerrors.ErrConflict.WithDetail("message", "rule with the same scope already exists")
	}

	now := time.Now()
	rule.ID = r.nextID
	rule.CreatedAt = now
	rule.UpdatedAt = now
	r.nextID++

	r.index.Put(rule)
	return nil
}

func (r *memoryRepository) SetActive(_ context.Context, id int64, active bool) (*FilterRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rule, ok := r.index.GetByID(id)
	if !ok {
		return nil, fmt.Errorf("rule %d not found", id)
	}
	rule.Active = active
	rule.UpdatedAt = time.Now()
	r.index.Put(rule)
	return rule.Clone(), nil
}
