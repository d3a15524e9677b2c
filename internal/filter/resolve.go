package filter

import (
	"context"

	pkgerrors "chatfilter/pkg/errors"
)

// Resolver turns raw request parameters into a ResolvedScope.
type Resolver struct {
	channels      ChannelRegistry
	commands      CommandRegistry
	users         UserRegistry
	selfCommandID int64
}

// NewResolver builds a Resolver. selfCommandID is the identifier of the
// command that issues ban requests; it can never be the target of one.
func NewResolver(channels ChannelRegistry, commands CommandRegistry, users UserRegistry, selfCommandID int64) *Resolver {
	return &Resolver{
		channels:      channels,
		commands:      commands,
		users:         users,
		selfCommandID: selfCommandID,
	}
}

// ResolveScope has no side effects. It fails with a domain error when a
// parameter does not resolve or targets something that cannot be banned.
func (r *Resolver) ResolveScope(ctx context.Context, params Params, actor Actor, defaultChannel Channel) (*ResolvedScope, error) {
	resolved := &ResolvedScope{ChannelRecord: defaultChannel}

	if params.Channel != "" {
		channel, err := r.channels.GetChannel(ctx, params.Channel)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
		}
		if channel == nil {
			return nil, pkgerrors.ErrNotFound.WithDetail("kind", "channel").WithDetail("name", params.Channel)
		}
		resolved.ChannelRecord = *channel
		resolved.ChannelSupplied = true
	}

	if params.Command != "" {
		cmd, err := r.commands.GetCommand(ctx, params.Command)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
		}
		if cmd == nil {
			return nil, pkgerrors.ErrNotFound.WithDetail("kind", "command").WithDetail("name", params.Command)
		}
		if cmd.ID == r.selfCommandID {
			return nil, pkgerrors.ErrSelfCommand.WithDetail("command", cmd.Name).WithDetail("via", "command")
		}
		resolved.Command.Int64, resolved.Command.Valid = cmd.ID, true
	}

	if params.Invocation != "" {
		cmd, err := r.commands.GetCommand(ctx, params.Invocation)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
		}
		if cmd == nil {
			return nil, pkgerrors.ErrNotFound.WithDetail("kind", "invocation").WithDetail("name", params.Invocation)
		}
		if cmd.ID == r.selfCommandID {
			return nil, pkgerrors.ErrSelfCommand.WithDetail("command", cmd.Name).WithDetail("via", "invocation")
		}
		if resolved.Command.Valid && resolved.Command.Int64 != cmd.ID {
			return nil, pkgerrors.ErrConflictingCommand.
				WithDetail("command", params.Command).
				WithDetail("invocation", params.Invocation)
		}
		resolved.Command.Int64, resolved.Command.Valid = cmd.ID, true
		resolved.Invocation.String, resolved.Invocation.Valid = params.Invocation, true
	}

	if params.User != "" {
		user, err := r.users.GetUser(ctx, params.User)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
		}
		if user == nil {
			return nil, pkgerrors.ErrNotFound.WithDetail("kind", "user").WithDetail("name", params.User)
		}
		if user.ID == actor.ID {
			return nil, pkgerrors.ErrSelfTarget
		}
		resolved.User.Int64, resolved.User.Valid = user.ID, true
	}

	resolved.Channel.Int64, resolved.Channel.Valid = resolved.ChannelRecord.ID, true

	return resolved, nil
}
