package commands

import (
	"context"

	"chatfilter/internal/filter"
)

// Command handles a single chat command and all of its aliases.
type Command interface {
	Name() string
	Aliases() []string
	// Help returns usage lines for the given command prefix.
	Help(prefix string) []string
	Handle(ctx context.Context, c *Context) (*Reply, error)
}

// Message is a chat line addressed to the bot.
type Message struct {
	Text    string         `json:"message"`
	Actor   filter.Actor   `json:"actor"`
	Channel filter.Channel `json:"channel"`
}

type Context struct {
	Message Message

	// Invocation is the lowercased name the command was called by.
	Invocation string
	Raw        string
	Args       []string
}

type Reply struct {
	Command string `json:"command"`
	Success bool   `json:"success"`
	Kind    string `json:"kind,omitempty"`
	Text    string `json:"reply"`
}
