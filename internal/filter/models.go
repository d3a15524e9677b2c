package filter

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"chatfilter/internal/constants"
)

// Response describes what happens when a rule blocks an invocation.
type Response string

const (
	ResponseNone   Response = "None"
	ResponseReason Response = "Reason"
)

// State is the outcome a ban request asks for. Its value doubles as the
// verb used in replies.
type State string

const (
	StateBan   State = "ban"
	StateUnban State = "unban"
)

func ParseState(s string) (State, error) {
	switch State(s) {
	case StateBan, StateUnban:
		return State(s), nil
	default:
		return "", fmt.Errorf("unknown ban state %q", s)
	}
}

// Active is the rule Active flag this state corresponds to.
func (s State) Active() bool {
	return s == StateBan
}

type FilterRule struct {
	ID         int64     `json:"id"`
	Type       string    `json:"type"`
	Channel    *int64    `json:"channel"`
	Command    *int64    `json:"command"`
	Invocation *string   `json:"invocation"`
	User       *int64    `json:"user"`
	IssuedBy   int64     `json:"issued_by"`
	Active     bool      `json:"active"`
	Response   Response  `json:"response"`
	Reason     *string   `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Scope is the (Channel, Command, Invocation, User) part of a rule's
// identity. An invalid field means "unset" and only matches another unset
// field. Scope is comparable and used directly as a map key.
type Scope struct {
	Channel    sql.NullInt64
	Command    sql.NullInt64
	Invocation sql.NullString
	User       sql.NullInt64
}

// Key is the full rule identity.
type Key struct {
	Type string
	Scope
}

func NewScope(channel, command *int64, invocation *string, user *int64) Scope {
	return Scope{
		Channel:    nullID(channel),
		Command:    nullID(command),
		Invocation: nullString(invocation),
		User:       nullID(user),
	}
}

func (s Scope) Key() Key {
	return Key{Type: constants.RuleTypeBlacklist, Scope: s}
}

// LockKey is a stable string form of the scope used to name mutation locks.
func (s Scope) LockKey() string {
	return fmt.Sprintf("%s:c=%s:m=%s:i=%s:u=%s",
		constants.RuleTypeBlacklist,
		formatNullID(s.Channel), formatNullID(s.Command),
		formatNullString(s.Invocation), formatNullID(s.User),
	)
}

func (r *FilterRule) Scope() Scope {
	return NewScope(r.Channel, r.Command, r.Invocation, r.User)
}

func (r *FilterRule) Key() Key {
	return Key{Type: r.Type, Scope: r.Scope()}
}

func (r *FilterRule) Clone() *FilterRule {
	if r == nil {
		return nil
	}
	c := *r
	c.Channel = cloneInt(r.Channel)
	c.Command = cloneInt(r.Command)
	c.User = cloneInt(r.User)
	c.Invocation = cloneString(r.Invocation)
	c.Reason = cloneString(r.Reason)
	return &c
}

// ToMap renders the rule the way it is exposed to list queries.
func (r *FilterRule) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":         r.ID,
		"type":       r.Type,
		"channel":    derefInt(r.Channel),
		"command":    derefInt(r.Command),
		"invocation": derefString(r.Invocation),
		"user":       derefInt(r.User),
		"issued_by":  r.IssuedBy,
		"active":     r.Active,
		"response":   string(r.Response),
		"reason":     derefString(r.Reason),
	}
}

// Actor is the user issuing a ban request.
type Actor struct {
	ID   int64  `json:"id" binding:"gt=0"`
	Name string `json:"name"`
}

// Params are the raw, unresolved request parameters. Empty means not
// supplied.
type Params struct {
	Channel    string `json:"channel,omitempty"`
	Command    string `json:"command,omitempty"`
	Invocation string `json:"invocation,omitempty"`
	User       string `json:"user,omitempty"`
}

type Channel struct {
	ID       int64  `json:"id" binding:"gt=0"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
}

type Command struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
}

type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Permissions lists which roles an actor holds for a channel.
type Permissions struct {
	Admin      bool `json:"admin"`
	Owner      bool `json:"owner"`
	Ambassador bool `json:"ambassador"`
}

func (p Permissions) Any() bool {
	return p.Admin || p.Owner || p.Ambassador
}

// ChannelLevel reports whether the actor acts with channel-level rights
// only.
func (p Permissions) ChannelLevel() bool {
	return !p.Admin && (p.Owner || p.Ambassador)
}

// ResolvedScope is a scope whose names have been resolved to identifiers.
type ResolvedScope struct {
	Scope
	// Channel the rule applies to, defaulted to the context channel.
	ChannelRecord Channel
	// ChannelSupplied is true when the request named a channel explicitly.
	ChannelSupplied bool
}

// Grant is the result of authorizing a resolved scope.
type Grant struct {
	Permissions Permissions
	Response    Response
	Reason      *string
}

// Outcome is the result of a successful toggle-or-create.
type Outcome struct {
	Created bool
	Rule    *FilterRule
}

// Result is what a ban request returns to its caller.
type Result struct {
	Success bool        `json:"success"`
	Kind    string      `json:"kind,omitempty"`
	Message string      `json:"message"`
	Created bool        `json:"created,omitempty"`
	Rule    *FilterRule `json:"rule,omitempty"`
}

func nullID(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func idPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func formatNullID(v sql.NullInt64) string {
	if !v.Valid {
		return "-"
	}
	return strconv.FormatInt(v.Int64, 10)
}

func formatNullString(v sql.NullString) string {
	if !v.Valid {
		return "-"
	}
	return strconv.Quote(v.String)
}

func cloneInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func derefInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func derefString(v *string) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
