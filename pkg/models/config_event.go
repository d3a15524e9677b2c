package models

import "time"

// RuleEvent announces a change to a ban rule so that other service
// instances can refresh their index.
type RuleEvent struct {
	ID        string                 `json:"id"`
	Source    string                 `json:"source"`
	Timestamp time.Time              `json:"timestamp"`
	EventType string                 `json:"event_type"`
	RuleID    int64                  `json:"rule_id,omitempty"`
	Action    string                 `json:"action"` // "create", "ban", "unban", "reload"
	Active    bool                   `json:"active"`
	ChangedBy int64                  `json:"changed_by,omitempty"`
	TraceID   string                 `json:"trace_id,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

const (
	EventTypeBanRuleUpdated = "ban_rule_updated"
)

const (
	ActionCreate = "create"
	ActionBan    = "ban"
	ActionUnban  = "unban"
	ActionReload = "reload"
)

func (e *RuleEvent) SetMetadata(key string, value interface{}) {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
}
