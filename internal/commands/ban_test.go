package commands

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatfilter/internal/config"
	"chatfilter/internal/filter"
	"chatfilter/internal/logger"
	"chatfilter/internal/registry"
)

type applyCall struct {
	state  filter.State
	params filter.Params
	actor  filter.Actor
	in     filter.Channel
}

type fakeApplier struct {
	calls  []applyCall
	result filter.Result
}

func (f *fakeApplier) ApplyBanRequest(_ context.Context, state filter.State, params filter.Params, actor filter.Actor, contextChannel filter.Channel) filter.Result {
	f.calls = append(f.calls, applyCall{state: state, params: params, actor: actor, in: contextChannel})
	return f.result
}

var (
	lobby   = filter.Channel{ID: 1, Name: "lobby", Platform: "twitch"}
	adminer = filter.Actor{ID: 100, Name: "root"}
	owner   = filter.Actor{ID: 200, Name: "owner"}
)

func TestBanCommand_ParsesParams(t *testing.T) {
	applier := &fakeApplier{result: filter.Result{Success: true, Message: "Successfully banned (ID 7)"}}
	router := NewRouter("$", logger.NopLogger())
	router.Register(NewBanCommand(applier))

	reply, err := router.Handle(context.Background(), Message{
		Text:    "$ban user:test command:remind channel:other invocation:remindme note",
		Actor:   adminer,
		Channel: lobby,
	})
	require.NoError(t, err)
	assert.True(t, reply.Success)
	assert.Equal(t, "Successfully banned (ID 7)", reply.Text)

	require.Len(t, applier.calls, 1)
	call := applier.calls[0]
	assert.Equal(t, filter.StateBan, call.state)
	assert.Equal(t, filter.Params{Channel: "other", Command: "remind", Invocation: "remindme", User: "test"}, call.params)
	assert.Equal(t, adminer, call.actor)
	assert.Equal(t, lobby, call.in)
}

func TestBanCommand_UnbanAliasSelectsState(t *testing.T) {
	applier := &fakeApplier{result: filter.Result{Success: true, Message: "Successfully unbanned."}}
	router := NewRouter("$", logger.NopLogger())
	router.Register(NewBanCommand(applier))

	_, err := router.Handle(context.Background(), Message{Text: "$UnBan user:test", Actor: adminer, Channel: lobby})
	require.NoError(t, err)

	require.Len(t, applier.calls, 1)
	assert.Equal(t, filter.StateUnban, applier.calls[0].state)
}

func TestBanCommand_UnknownParameter(t *testing.T) {
	applier := &fakeApplier{}
	router := NewRouter("$", logger.NopLogger())
	router.Register(NewBanCommand(applier))

	reply, err := router.Handle(context.Background(), Message{Text: "$ban user:test reason:spam", Actor: adminer, Channel: lobby})
	require.NoError(t, err)
	assert.False(t, reply.Success)
	assert.Equal(t, "Unknown parameter: reason", reply.Text)
	assert.Empty(t, applier.calls)
}

func TestBanCommand_Help(t *testing.T) {
	lines := NewBanCommand(nil).Help("!")
	assert.Contains(t, lines, "!ban user:test command:remind")
	assert.Contains(t, lines, "!unban user:test")
	for _, line := range lines {
		assert.NotContains(t, line, "$")
	}
}

type stubChannels struct{}

func (stubChannels) GetChannel(_ context.Context, nameOrID string) (*filter.Channel, error) {
	if strings.EqualFold(nameOrID, lobby.Name) {
		c := lobby
		return &c, nil
	}
	return nil, nil
}

type stubUsers map[string]int64

func (s stubUsers) GetUser(_ context.Context, nameOrID string) (*filter.User, error) {
	id, ok := s[strings.ToLower(nameOrID)]
	if !ok {
		return nil, nil
	}
	return &filter.User{ID: id, Name: nameOrID}, nil
}

type stubPermissions struct{}

func (stubPermissions) Permissions(_ context.Context, actor filter.Actor, channel filter.Channel) (filter.Permissions, error) {
	return filter.Permissions{
		Admin: actor.ID == adminer.ID,
		Owner: actor.ID == owner.ID && channel.ID == lobby.ID,
	}, nil
}

func newServiceRouter(t *testing.T) *Router {
	t.Helper()

	commands := registry.NewCommandRegistry([]config.CommandConfig{
		{ID: 1, Name: "ban", Aliases: []string{"unban"}},
		{ID: 2, Name: "remind", Aliases: []string{"remindme"}},
	})
	banID, ok := commands.ID("ban")
	require.True(t, ok)

	log := logger.NopLogger()
	store := filter.NewStore(newRulesRepository(), log)
	require.NoError(t, store.Reload(context.Background(), "test"))

	service := filter.NewService(
		filter.NewResolver(stubChannels{}, commands, stubUsers{"root": 100, "owner": 200, "test": 300}, banID),
		filter.NewAuthorizer(stubPermissions{}, ""),
		store,
		log,
	)

	router := NewRouter("$", log)
	router.Register(NewBanCommand(service))
	return router
}

func TestBanCommand_EndToEnd(t *testing.T) {
	router := newServiceRouter(t)
	ctx := context.Background()

	run := func(actor filter.Actor, text string) *Reply {
		reply, err := router.Handle(ctx, Message{Text: text, Actor: actor, Channel: lobby})
		require.NoError(t, err)
		require.NotNil(t, reply)
		return reply
	}

	reply := run(owner, "$ban user:test command:remind")
	assert.True(t, reply.Success)
	assert.Equal(t, "Successfully banned (ID 1)", reply.Text)

	reply = run(owner, "$ban user:test command:remind")
	assert.False(t, reply.Success)
	assert.Equal(t, "That combination is already banned!", reply.Text)

	reply = run(owner, "$unban user:test command:remind")
	assert.True(t, reply.Success)
	assert.Equal(t, "Successfully unbanned.", reply.Text)

	reply = run(owner, "$unban command:remind")
	assert.Equal(t, "This combination has not been banned yet, so it cannot be unbanned!", reply.Text)

	reply = run(owner, "$ban command:unban")
	assert.Equal(t, "You can't ban the ban command!", reply.Text)

	reply = run(owner, "$ban invocation:unban")
	assert.Equal(t, "You can't ban the ban command's invocation!", reply.Text)

	reply = run(owner, "$ban user:owner")
	assert.Equal(t, "You can't ban yourself!", reply.Text)

	reply = run(owner, "$ban")
	assert.Equal(t, "Not enough data provided to create a ban! You are missing user and/or command", reply.Text)

	reply = run(filter.Actor{ID: 300, Name: "test"}, "$ban command:remind")
	assert.Equal(t, "Can't do that in this channel!", reply.Text)

	reply = run(adminer, "$ban user:test command:remind")
	assert.True(t, reply.Success)
	assert.Equal(t, "Successfully banned again.", reply.Text)
}
