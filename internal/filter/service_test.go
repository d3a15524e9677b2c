package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "chatfilter/pkg/errors"
)

func TestApplyBanRequest_AdminBansCommandInCurrentChannel(t *testing.T) {
	env := newTestEnv(t)

	result := env.service.ApplyBanRequest(context.Background(), StateBan, Params{Command: "remind"}, admin, mainChannel)

	require.True(t, result.Success, result.Message)
	assert.True(t, result.Created)
	require.NotNil(t, result.Rule)
	assert.Equal(t, "Successfully banned (ID 1)", result.Message)
	assert.Equal(t, mainChannel.ID, *result.Rule.Channel)
	assert.Equal(t, remindCommandID, *result.Rule.Command)
	assert.Nil(t, result.Rule.User)
	assert.True(t, result.Rule.Active)
	assert.Equal(t, ResponseNone, result.Rule.Response)
	assert.Nil(t, result.Rule.Reason)
}

func TestApplyBanRequest_OwnerBansUser(t *testing.T) {
	env := newTestEnv(t)

	result := env.service.ApplyBanRequest(context.Background(), StateBan, Params{User: "test"}, owner, mainChannel)

	require.True(t, result.Success, result.Message)
	assert.Equal(t, ResponseReason, result.Rule.Response)
	require.NotNil(t, result.Rule.Reason)
	assert.Equal(t, "Banned in this channel.", *result.Rule.Reason)
	assert.Equal(t, testUserID, *result.Rule.User)
}

func TestApplyBanRequest_Toggle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	params := Params{Command: "remind"}

	created := env.service.ApplyBanRequest(ctx, StateBan, params, admin, mainChannel)
	require.True(t, created.Success)

	unbanned := env.service.ApplyBanRequest(ctx, StateUnban, params, admin, mainChannel)
	require.True(t, unbanned.Success)
	assert.Equal(t, "Successfully unbanned.", unbanned.Message)
	assert.False(t, unbanned.Created)

	again := env.service.ApplyBanRequest(ctx, StateBan, params, admin, mainChannel)
	require.True(t, again.Success)
	assert.Equal(t, "Successfully banned again.", again.Message)
	assert.Equal(t, created.Rule.ID, again.Rule.ID)
}

func TestApplyBanRequest_Replies(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		params   Params
		actor    Actor
		setup    func(t *testing.T, env *testEnv)
		wantKind string
		wantText string
	}{
		{
			name:     "channel not found",
			state:    StateBan,
			params:   Params{Channel: "nowhere", User: "test"},
			actor:    admin,
			wantKind: pkgerrors.ErrNotFound.Code,
			wantText: "Channel was not found!",
		},
		{
			name:     "command not found",
			state:    StateBan,
			params:   Params{Command: "nope"},
			actor:    admin,
			wantKind: pkgerrors.ErrNotFound.Code,
			wantText: "Command does not exist!",
		},
		{
			name:     "invocation not found",
			state:    StateBan,
			params:   Params{Invocation: "nope"},
			actor:    admin,
			wantKind: pkgerrors.ErrNotFound.Code,
			wantText: "No command found for given invocation!",
		},
		{
			name:     "user not found",
			state:    StateUnban,
			params:   Params{User: "ghost"},
			actor:    admin,
			wantKind: pkgerrors.ErrNotFound.Code,
			wantText: "User was not found!",
		},
		{
			name:     "self command",
			state:    StateBan,
			params:   Params{Command: "ban"},
			actor:    admin,
			wantKind: pkgerrors.ErrSelfCommand.Code,
			wantText: "You can't ban the ban command!",
		},
		{
			name:     "self invocation",
			state:    StateUnban,
			params:   Params{Invocation: "unban"},
			actor:    admin,
			wantKind: pkgerrors.ErrSelfCommand.Code,
			wantText: "You can't unban the ban command's invocation!",
		},
		{
			name:     "conflicting command",
			state:    StateBan,
			params:   Params{Command: "ping", Invocation: "remindme"},
			actor:    admin,
			wantKind: pkgerrors.ErrConflictingCommand.Code,
			wantText: "Invalid command + invocation provided! Either keep command: empty, or use the command that belongs to the provided invocation",
		},
		{
			name:     "self target",
			state:    StateBan,
			params:   Params{User: "owner"},
			actor:    owner,
			wantKind: pkgerrors.ErrSelfTarget.Code,
			wantText: "You can't ban yourself!",
		},
		{
			name:     "permission denied",
			state:    StateBan,
			params:   Params{User: "test"},
			actor:    stranger,
			wantKind: pkgerrors.ErrPermissionDenied.Code,
			wantText: "Can't do that in this channel!",
		},
		{
			name:     "channel level without target",
			state:    StateBan,
			params:   Params{},
			actor:    owner,
			wantKind: pkgerrors.ErrInsufficientScope.Code,
			wantText: "Not enough data provided to create a ban! You are missing user and/or command",
		},
		{
			name:     "admin without target",
			state:    StateBan,
			params:   Params{},
			actor:    admin,
			wantKind: pkgerrors.ErrInsufficientScope.Code,
			wantText: "Not enough data provided to create a ban! You are missing user/command/channel",
		},
		{
			name:   "not owner",
			state:  StateUnban,
			params: Params{User: "test"},
			actor:  amb,
			setup: func(t *testing.T, env *testEnv) {
				r := env.service.ApplyBanRequest(context.Background(), StateBan, Params{User: "test"}, owner, mainChannel)
				require.True(t, r.Success, r.Message)
			},
			wantKind: pkgerrors.ErrNotOwner.Code,
			wantText: "This ban has not been created by you, so you cannot modify it!",
		},
		{
			name:   "already banned",
			state:  StateBan,
			params: Params{Command: "remind"},
			actor:  admin,
			setup: func(t *testing.T, env *testEnv) {
				r := env.service.ApplyBanRequest(context.Background(), StateBan, Params{Command: "remind"}, admin, mainChannel)
				require.True(t, r.Success, r.Message)
			},
			wantKind: pkgerrors.ErrAlreadyInState.Code,
			wantText: "That combination is already banned!",
		},
		{
			name:   "already unbanned",
			state:  StateUnban,
			params: Params{Command: "remind"},
			actor:  admin,
			setup: func(t *testing.T, env *testEnv) {
				ctx := context.Background()
				require.True(t, env.service.ApplyBanRequest(ctx, StateBan, Params{Command: "remind"}, admin, mainChannel).Success)
				require.True(t, env.service.ApplyBanRequest(ctx, StateUnban, Params{Command: "remind"}, admin, mainChannel).Success)
			},
			wantKind: pkgerrors.ErrAlreadyInState.Code,
			wantText: "That combination is already unbanned!",
		},
		{
			name:     "nothing to unban",
			state:    StateUnban,
			params:   Params{Command: "remind"},
			actor:    admin,
			wantKind: pkgerrors.ErrNothingToUnban.Code,
			wantText: "This combination has not been banned yet, so it cannot be unbanned!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.setup != nil {
				tt.setup(t, env)
			}

			result := env.service.ApplyBanRequest(context.Background(), tt.state, tt.params, tt.actor, mainChannel)

			assert.False(t, result.Success)
			assert.Equal(t, tt.wantKind, result.Kind)
			assert.Equal(t, tt.wantText, result.Message)
		})
	}
}

func TestApplyBanRequest_ConflictCausesNoMutation(t *testing.T) {
	env := newTestEnv(t)

	result := env.service.ApplyBanRequest(context.Background(), StateBan, Params{Command: "ping", Invocation: "remindme"}, admin, mainChannel)
	require.False(t, result.Success)

	assert.Empty(t, env.store.List())
	assert.Empty(t, env.publisher.Actions())
}

func TestApplyBanRequest_InfrastructureFault(t *testing.T) {
	env := newTestEnv(t)
	env.registry.fail = true

	result := env.service.ApplyBanRequest(context.Background(), StateBan, Params{User: "test"}, admin, mainChannel)

	assert.False(t, result.Success)
	assert.Equal(t, pkgerrors.ErrInternal.Code, result.Kind)
	assert.Equal(t, "An internal error occurred, try again later.", result.Message)
}

func TestApplyBanRequest_BansAreVisibleToIsBanned(t *testing.T) {
	env := newTestEnv(t)

	require.True(t, env.service.ApplyBanRequest(context.Background(), StateBan, Params{Command: "remind"}, admin, mainChannel).Success)

	user := testUserID
	channel := mainChannel.ID
	command := remindCommandID
	invocation := "remindme"

	rule, banned := env.store.IsBanned(NewScope(&channel, &command, &invocation, &user))
	assert.True(t, banned)
	assert.Equal(t, remindCommandID, *rule.Command)

	other := otherChannel.ID
	_, banned = env.store.IsBanned(NewScope(&other, &command, &invocation, &user))
	assert.False(t, banned)
}
