package filter

import (
	"context"

	"chatfilter/internal/constants"
	pkgerrors "chatfilter/pkg/errors"
)

type Authorizer struct {
	permissions   PermissionResolver
	defaultReason string
}

func NewAuthorizer(permissions PermissionResolver, defaultReason string) *Authorizer {
	if defaultReason == "" {
		defaultReason = constants.DefaultChannelBanReason
	}
	return &Authorizer{
		permissions:   permissions,
		defaultReason: defaultReason,
	}
}

// Authorize looks up the actor's roles for the scope's channel and decides
// whether the request may proceed and with which response.
func (a *Authorizer) Authorize(ctx context.Context, scope *ResolvedScope, actor Actor) (*Grant, error) {
	perms, err := a.permissions.Permissions(ctx, actor, scope.ChannelRecord)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return a.evaluate(scope, perms)
}

func (a *Authorizer) evaluate(scope *ResolvedScope, perms Permissions) (*Grant, error) {
	if !perms.Any() {
		return nil, pkgerrors.ErrPermissionDenied.WithDetail("channel", scope.ChannelRecord.Name)
	}

	hasTarget := scope.User.Valid || scope.Command.Valid

	if perms.ChannelLevel() {
		if !hasTarget {
			return nil, pkgerrors.ErrInsufficientScope.WithDetail("level", "channel")
		}
		reason := a.defaultReason
		return &Grant{
			Permissions: perms,
			Response:    ResponseReason,
			Reason:      &reason,
		}, nil
	}

	if !hasTarget && !scope.ChannelSupplied {
		return nil, pkgerrors.ErrInsufficientScope.WithDetail("level", "global")
	}

	return &Grant{
		Permissions: perms,
		Response:    ResponseNone,
	}, nil
}
