package registry

import (
	"context"

	"chatfilter/internal/filter"
)

// AdminChecker reports whether a user is a global admin.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID int64) (bool, error)
}

// RoleChecker reports a user's roles in a channel.
type RoleChecker interface {
	ChannelRoles(ctx context.Context, channelID, userID int64) (owner, ambassador bool, err error)
}

// PermissionResolver combines global admin status with channel roles.
type PermissionResolver struct {
	admins AdminChecker
	roles  RoleChecker
}

func NewPermissionResolver(admins AdminChecker, roles RoleChecker) *PermissionResolver {
	return &PermissionResolver{admins: admins, roles: roles}
}

func (r *PermissionResolver) Permissions(ctx context.Context, actor filter.Actor, channel filter.Channel) (filter.Permissions, error) {
	var perms filter.Permissions

	admin, err := r.admins.IsAdmin(ctx, actor.ID)
	if err != nil {
		return perms, err
	}
	perms.Admin = admin

	owner, ambassador, err := r.roles.ChannelRoles(ctx, channel.ID, actor.ID)
	if err != nil {
		return perms, err
	}
	perms.Owner = owner
	perms.Ambassador = ambassador

	return perms, nil
}
