package commands

import (
	"context"
	"fmt"
	"strings"

	"chatfilter/internal/constants"
	"chatfilter/internal/filter"
)

// BanApplier is satisfied by *filter.Service.
type BanApplier interface {
	ApplyBanRequest(ctx context.Context, state filter.State, params filter.Params, actor filter.Actor, contextChannel filter.Channel) filter.Result
}

// BanCommand bans or unbans a combination of channel, command, invocation
// and user. Calling it through its unban alias asks for the unbanned state.
type BanCommand struct {
	applier BanApplier
}

func NewBanCommand(applier BanApplier) *BanCommand {
	return &BanCommand{applier: applier}
}

func (b *BanCommand) Name() string {
	return constants.BanCommandName
}

func (b *BanCommand) Aliases() []string {
	return []string{constants.UnbanAlias}
}

func (b *BanCommand) Help(prefix string) []string {
	return []string{
		"Bans or unbans any combination of user/channel/command.",
		"Only usable by admins or channel owners. Channel owners can only ban combinations in their channel.",
		"All following examples assume the command is executed by a channel owner.",
		"",
		prefix + "ban user:test command:remind",
		"Bans user test from executing the command remind in the current channel.",
		"",
		prefix + "ban command:remind",
		"Bans everyone from executing the command remind in the current channel.",
		"",
		prefix + "ban user:test",
		"Bans user test from executing any commands in the current channel.",
		"",
		prefix + "unban user:test command:remind",
		"If banned before, user test will be unbanned from executing the command remind in the current channel.",
		"",
		prefix + "unban command:remind",
		"If banned before, everyone will be unbanned from executing the command remind in the current channel.",
		"",
		prefix + "unban user:test",
		"If banned before, user test will be unbanned from executing any commands in the current channel.",
	}
}

func (b *BanCommand) Handle(ctx context.Context, c *Context) (*Reply, error) {
	state := filter.StateBan
	if c.Invocation == constants.UnbanAlias {
		state = filter.StateUnban
	}

	params, unknown := parseBanParams(c.Args)
	if unknown != "" {
		return &Reply{
			Kind: "UNKNOWN_PARAMETER",
			Text: fmt.Sprintf("Unknown parameter: %s", unknown),
		}, nil
	}

	result := b.applier.ApplyBanRequest(ctx, state, params, c.Message.Actor, c.Message.Channel)
	return &Reply{
		Success: result.Success,
		Kind:    result.Kind,
		Text:    result.Message,
	}, nil
}

// parseBanParams reads key:value tokens. Tokens without a colon are
// ignored; the first unrecognized key is returned as unknown.
func parseBanParams(args []string) (params filter.Params, unknown string) {
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, ":")
		if !ok {
			continue
		}

		switch strings.ToLower(key) {
		case "channel":
			params.Channel = value
		case "command":
			params.Command = value
		case "invocation":
			params.Invocation = value
		case "user":
			params.User = value
		default:
			return filter.Params{}, key
		}
	}
	return params, ""
}
