package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatfilter/internal/logger"
	"chatfilter/pkg/errors"
)

type echoCommand struct {
	calls []*Context
}

func (e *echoCommand) Name() string { return "echo" }

func (e *echoCommand) Aliases() []string { return []string{"say"} }

func (e *echoCommand) Help(prefix string) []string { return []string{prefix + "echo <text>"} }

func (e *echoCommand) Handle(_ context.Context, c *Context) (*Reply, error) {
	e.calls = append(e.calls, c)
	return &Reply{Success: true, Text: c.Raw}, nil
}

func TestRouter_Handle(t *testing.T) {
	echo := &echoCommand{}
	router := NewRouter("$", logger.NopLogger())
	router.Register(echo)

	reply, err := router.Handle(context.Background(), Message{Text: "  $SAY hello world  "})
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, "echo", reply.Command)
	assert.True(t, reply.Success)

	require.Len(t, echo.calls, 1)
	assert.Equal(t, "say", echo.calls[0].Invocation)
	assert.Equal(t, []string{"hello", "world"}, echo.calls[0].Args)
}

func TestRouter_IgnoresNonCommands(t *testing.T) {
	router := NewRouter("$", logger.NopLogger())
	router.Register(&echoCommand{})

	for _, text := range []string{"", "   ", "hello $echo", "$", "$   "} {
		reply, err := router.Handle(context.Background(), Message{Text: text})
		assert.NoError(t, err, text)
		assert.Nil(t, reply, text)
	}
}

func TestRouter_UnknownCommand(t *testing.T) {
	router := NewRouter("$", logger.NopLogger())

	_, err := router.Handle(context.Background(), Message{Text: "$nope"})
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestRouter_LookupAndNames(t *testing.T) {
	router := NewRouter("!", logger.NopLogger())
	router.Register(&echoCommand{})
	router.Register(NewBanCommand(nil))

	cmd, ok := router.Lookup("UNBAN")
	require.True(t, ok)
	assert.Equal(t, "ban", cmd.Name())

	_, ok = router.Lookup("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"ban", "echo"}, router.Names())
	assert.Equal(t, "!", router.Prefix())
}
