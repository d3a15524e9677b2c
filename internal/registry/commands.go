package registry

import (
	"context"
	"sort"
	"strings"

	"chatfilter/internal/config"
	"chatfilter/internal/filter"
)

// CommandRegistry resolves command names and invocation aliases. Commands
// are static for the lifetime of the process.
type CommandRegistry struct {
	byName map[string]filter.Command
	byID   map[int64]filter.Command
}

func NewCommandRegistry(commands []config.CommandConfig) *CommandRegistry {
	r := &CommandRegistry{
		byName: make(map[string]filter.Command),
		byID:   make(map[int64]filter.Command, len(commands)),
	}

	for _, cfg := range commands {
		cmd := filter.Command{
			ID:      cfg.ID,
			Name:    cfg.Name,
			Aliases: append([]string(nil), cfg.Aliases...),
		}
		r.byID[cmd.ID] = cmd
		r.byName[strings.ToLower(cmd.Name)] = cmd
	}
	// Canonical names win over aliases of other commands.
	for _, cfg := range commands {
		for _, alias := range cfg.Aliases {
			key := strings.ToLower(alias)
			if _, taken := r.byName[key]; !taken {
				r.byName[key] = r.byID[cfg.ID]
			}
		}
	}

	return r
}

func (r *CommandRegistry) GetCommand(_ context.Context, nameOrInvocation string) (*filter.Command, error) {
	cmd, ok := r.byName[strings.ToLower(nameOrInvocation)]
	if !ok {
		return nil, nil
	}
	return &cmd, nil
}

// ID returns the identifier of the command with the given canonical name.
func (r *CommandRegistry) ID(name string) (int64, bool) {
	cmd, ok := r.byName[strings.ToLower(name)]
	if !ok || !strings.EqualFold(cmd.Name, name) {
		return 0, false
	}
	return cmd.ID, true
}

func (r *CommandRegistry) List() []filter.Command {
	out := make([]filter.Command, 0, len(r.byID))
	for _, cmd := range r.byID {
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
