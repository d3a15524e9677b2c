package filter

import (
	"context"
)

// Lookups return (nil, nil) when the name does not resolve. Any error is an
// infrastructure fault.

type ChannelRegistry interface {
	GetChannel(ctx context.Context, nameOrID string) (*Channel, error)
}

type CommandRegistry interface {
	// GetCommand resolves a command name or any of its invocation aliases.
	GetCommand(ctx context.Context, nameOrInvocation string) (*Command, error)
}

type UserRegistry interface {
	GetUser(ctx context.Context, nameOrID string) (*User, error)
}

type PermissionResolver interface {
	Permissions(ctx context.Context, actor Actor, channel Channel) (Permissions, error)
}

// Locker serializes mutations of a single scope.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// EventPublisher announces rule changes to other instances.
type EventPublisher interface {
	PublishRuleChange(ctx context.Context, action string, rule *FilterRule, changedBy int64) error
}
