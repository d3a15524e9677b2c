package filter

import (
	"fmt"

	pkgerrors "chatfilter/pkg/errors"
)

const internalErrorReply = "An internal error occurred, try again later."

// replyFor renders the user-facing text for a failed ban request.
func replyFor(state State, err error) string {
	var appErr *pkgerrors.Error
	if !pkgerrors.IsDomain(err) || !asAppError(err, &appErr) {
		return internalErrorReply
	}

	detail := func(key string) string {
		v, _ := appErr.Details[key].(string)
		return v
	}

	switch appErr.Code {
	case pkgerrors.ErrNotFound.Code:
		switch detail("kind") {
		case "channel":
			return "Channel was not found!"
		case "command":
			return "Command does not exist!"
		case "invocation":
			return "No command found for given invocation!"
		case "user":
			return "User was not found!"
		default:
			return "Ban was not found!"
		}
	case pkgerrors.ErrSelfCommand.Code:
		if detail("via") == "invocation" {
			return fmt.Sprintf("You can't %s the %s command's invocation!", state, detail("command"))
		}
		return fmt.Sprintf("You can't %s the %s command!", state, detail("command"))
	case pkgerrors.ErrConflictingCommand.Code:
		return "Invalid command + invocation provided! Either keep command: empty, or use the command that belongs to the provided invocation"
	case pkgerrors.ErrSelfTarget.Code:
		return fmt.Sprintf("You can't %s yourself!", state)
	case pkgerrors.ErrPermissionDenied.Code:
		return "Can't do that in this channel!"
	case pkgerrors.ErrInsufficientScope.Code:
		if detail("level") == "channel" {
			return "Not enough data provided to create a ban! You are missing user and/or command"
		}
		return "Not enough data provided to create a ban! You are missing user/command/channel"
	case pkgerrors.ErrNotOwner.Code:
		return "This ban has not been created by you, so you cannot modify it!"
	case pkgerrors.ErrAlreadyInState.Code:
		return fmt.Sprintf("That combination is already %sned!", state)
	case pkgerrors.ErrNothingToUnban.Code:
		return "This combination has not been banned yet, so it cannot be unbanned!"
	}

	return internalErrorReply
}

func successReply(outcome *Outcome) string {
	if outcome.Created {
		return fmt.Sprintf("Successfully banned (ID %d)", outcome.Rule.ID)
	}
	if outcome.Rule.Active {
		return "Successfully banned again."
	}
	return "Successfully unbanned."
}
