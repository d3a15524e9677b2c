package filter

import (
	"database/sql"
	"sort"
	"sync"
)

// Index is an in-memory hash of rules keyed by their identity tuple.
type Index struct {
	mu    sync.RWMutex
	byKey map[Key]*FilterRule
	byID  map[int64]*FilterRule
}

func NewIndex() *Index {
	return &Index{
		byKey: make(map[Key]*FilterRule),
		byID:  make(map[int64]*FilterRule),
	}
}

// Replace swaps the whole content of the index.
func (i *Index) Replace(rules []FilterRule) {
	byKey := make(map[Key]*FilterRule, len(rules))
	byID := make(map[int64]*FilterRule, len(rules))
	for idx := range rules {
		rule := rules[idx].Clone()
		byKey[rule.Key()] = rule
		byID[rule.ID] = rule
	}

	i.mu.Lock()
	i.byKey = byKey
	i.byID = byID
	i.mu.Unlock()
}

// Put inserts or replaces a rule.
func (i *Index) Put(rule *FilterRule) {
	rule = rule.Clone()

	i.mu.Lock()
	defer i.mu.Unlock()

	if old, ok := i.byID[rule.ID]; ok {
		delete(i.byKey, old.Key())
	}
	i.byKey[rule.Key()] = rule
	i.byID[rule.ID] = rule
}

func (i *Index) Get(key Key) (*FilterRule, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	rule, ok := i.byKey[key]
	return rule.Clone(), ok
}

func (i *Index) GetByID(id int64) (*FilterRule, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	rule, ok := i.byID[id]
	return rule.Clone(), ok
}

// List returns all rules ordered by ID.
func (i *Index) List() []FilterRule {
	i.mu.RLock()
	rules := make([]FilterRule, 0, len(i.byID))
	for _, rule := range i.byID {
		rules = append(rules, *rule.Clone())
	}
	i.mu.RUnlock()

	sort.Slice(rules, func(a, b int) bool { return rules[a].ID < rules[b].ID })
	return rules
}

func (i *Index) Counts() (total, active int) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	for _, rule := range i.byID {
		if rule.Active {
			active++
		}
	}
	return len(i.byID), active
}

// Match returns the first active rule that blocks an invocation described
// by target. A rule field that is unset matches any value.
func (i *Index) Match(target Scope) (*FilterRule, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	for _, candidate := range candidates(target) {
		if rule, ok := i.byKey[candidate.Key()]; ok && rule.Active {
			return rule.Clone(), true
		}
	}
	return nil, false
}

// candidates enumerates target and every variant of it with one or more
// fields unset, most specific first.
func candidates(target Scope) []Scope {
	channels := []sql.NullInt64{target.Channel}
	if target.Channel.Valid {
		channels = append(channels, sql.NullInt64{})
	}
	users := []sql.NullInt64{target.User}
	if target.User.Valid {
		users = append(users, sql.NullInt64{})
	}

	type commandPair struct {
		command    sql.NullInt64
		invocation sql.NullString
	}
	commands := []commandPair{{target.Command, target.Invocation}}
	if target.Invocation.Valid {
		commands = append(commands, commandPair{target.Command, sql.NullString{}})
	}
	if target.Command.Valid {
		commands = append(commands, commandPair{})
	}

	out := make([]Scope, 0, len(channels)*len(users)*len(commands))
	for _, cmd := range commands {
		for _, user := range users {
			for _, channel := range channels {
				out = append(out, Scope{
					Channel:    channel,
					Command:    cmd.command,
					Invocation: cmd.invocation,
					User:       user,
				})
			}
		}
	}
	return out
}
