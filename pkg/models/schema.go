package models

import "fmt"

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

var validActions = map[string]bool{
	ActionCreate: true,
	ActionBan:    true,
	ActionUnban:  true,
	ActionReload: true,
}

func ValidateRuleEvent(event *RuleEvent) error {
	if event == nil {
		return &ValidationError{
			Field:   "event",
			Message: "rule event cannot be nil",
		}
	}

	if event.ID == "" {
		return &ValidationError{
			Field:   "id",
			Message: "event ID is required",
		}
	}

	if event.Source == "" {
		return &ValidationError{
			Field:   "source",
			Message: "event source is required",
		}
	}

	if event.Timestamp.IsZero() {
		return &ValidationError{
			Field:   "timestamp",
			Message: "event timestamp is required",
		}
	}

	if !validActions[event.Action] {
		return &ValidationError{
			Field:   "action",
			Message: fmt.Sprintf("unknown action: %q", event.Action),
		}
	}

	if event.Action != ActionReload && event.RuleID <= 0 {
		return &ValidationError{
			Field:   "rule_id",
			Message: "rule ID is required for rule changes",
		}
	}

	return nil
}
