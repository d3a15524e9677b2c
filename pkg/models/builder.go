package models

import "time"

type RuleEventBuilder struct {
	event *RuleEvent
}

func NewRuleEventBuilder() *RuleEventBuilder {
	return &RuleEventBuilder{
		event: &RuleEvent{
			EventType: EventTypeBanRuleUpdated,
		},
	}
}

func (b *RuleEventBuilder) WithID(id string) *RuleEventBuilder {
	b.event.ID = id
	return b
}

func (b *RuleEventBuilder) WithSource(source string) *RuleEventBuilder {
	b.event.Source = source
	return b
}

func (b *RuleEventBuilder) WithTimestamp(timestamp time.Time) *RuleEventBuilder {
	b.event.Timestamp = timestamp
	return b
}

func (b *RuleEventBuilder) WithRule(ruleID int64, active bool) *RuleEventBuilder {
	b.event.RuleID = ruleID
	b.event.Active = active
	return b
}

func (b *RuleEventBuilder) WithAction(action string) *RuleEventBuilder {
	b.event.Action = action
	return b
}

func (b *RuleEventBuilder) WithChangedBy(actorID int64) *RuleEventBuilder {
	b.event.ChangedBy = actorID
	return b
}

func (b *RuleEventBuilder) WithTraceID(traceID string) *RuleEventBuilder {
	b.event.TraceID = traceID
	return b
}

func (b *RuleEventBuilder) Build() *RuleEvent {
	if b.event.Timestamp.IsZero() {
		b.event.Timestamp = time.Now()
	}
	return b.event
}
