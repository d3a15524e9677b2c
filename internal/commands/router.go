package commands

import (
	"context"
	"sort"
	"strings"

	"chatfilter/internal/logger"
	pkgerrors "chatfilter/pkg/errors"
)

// Router maps an invocation name to its command. It does not enforce
// cooldowns or permissions.
type Router struct {
	prefix   string
	cmdIndex map[string]Command
	logger   logger.Logger
}

func NewRouter(prefix string, log logger.Logger) *Router {
	return &Router{
		prefix:   prefix,
		cmdIndex: make(map[string]Command),
		logger:   log,
	}
}

func (r *Router) Prefix() string {
	return r.prefix
}

func (r *Router) Register(cmd Command) {
	r.cmdIndex[strings.ToLower(cmd.Name())] = cmd
	for _, alias := range cmd.Aliases() {
		r.cmdIndex[strings.ToLower(alias)] = cmd
	}
}

// Lookup finds a command by name or alias.
func (r *Router) Lookup(name string) (Command, bool) {
	cmd, ok := r.cmdIndex[strings.ToLower(name)]
	return cmd, ok
}

// Names lists the canonical names of the registered commands.
func (r *Router) Names() []string {
	seen := make(map[string]struct{}, len(r.cmdIndex))
	names := make([]string, 0, len(r.cmdIndex))
	for _, cmd := range r.cmdIndex {
		if _, ok := seen[cmd.Name()]; ok {
			continue
		}
		seen[cmd.Name()] = struct{}{}
		names = append(names, cmd.Name())
	}
	sort.Strings(names)
	return names
}

// Handle runs the command addressed by msg. A nil reply with a nil error
// means the message was not a command.
func (r *Router) Handle(ctx context.Context, msg Message) (*Reply, error) {
	text := strings.TrimSpace(msg.Text)
	if text == "" || !strings.HasPrefix(text, r.prefix) {
		return nil, nil
	}

	withoutPrefix := strings.TrimPrefix(text, r.prefix)
	parts := strings.Fields(withoutPrefix)
	if len(parts) == 0 {
		return nil, nil
	}

	cmdName := strings.ToLower(parts[0])
	cmd, ok := r.cmdIndex[cmdName]
	if !ok {
		return nil, pkgerrors.ErrNotFound.WithDetail("kind", "command").WithDetail("name", cmdName)
	}

	reply, err := cmd.Handle(ctx, &Context{
		Message:    msg,
		Invocation: cmdName,
		Raw:        withoutPrefix,
		Args:       parts[1:],
	})
	if err != nil {
		return nil, err
	}
	reply.Command = cmd.Name()

	r.logger.DebugwCtx(ctx, "Command executed",
		"command", cmd.Name(),
		"invocation", cmdName,
		"channel_id", msg.Channel.ID,
		"success", reply.Success,
	)
	return reply, nil
}
