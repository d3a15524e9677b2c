package filter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chatfilter/internal/constants"
	"chatfilter/pkg/models"
)

type capturingProducer struct {
	topic  string
	events []models.RuleEvent
}

func (p *capturingProducer) Publish(_ context.Context, topic string, event models.RuleEvent) error {
	p.topic = topic
	p.events = append(p.events, event)
	return nil
}

func (p *capturingProducer) Close() error { return nil }

func TestConfigEventProducer_PublishRuleChange(t *testing.T) {
	producer := &capturingProducer{}
	notifier := NewConfigEventProducer(producer, "ban_rule_updates")

	rule := &FilterRule{ID: 7, Channel: int64Ptr(1), Active: true}
	require.NoError(t, notifier.PublishRuleChange(context.Background(), models.ActionCreate, rule, adminID))

	require.Len(t, producer.events, 1)
	event := producer.events[0]
	assert.Equal(t, "ban_rule_updates", producer.topic)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, constants.ServiceName, event.Source)
	assert.Equal(t, models.EventTypeBanRuleUpdated, event.EventType)
	assert.Equal(t, int64(7), event.RuleID)
	assert.True(t, event.Active)
	assert.Equal(t, adminID, event.ChangedBy)
	assert.Equal(t, int64(1), event.Metadata["channel_id"])
	assert.NoError(t, models.ValidateRuleEvent(&event))
}

func TestConfigEventProducer_Disabled(t *testing.T) {
	notifier := NewConfigEventProducer(nil, "ban_rule_updates")

	assert.NoError(t, notifier.PublishRuleChange(context.Background(), models.ActionBan, &FilterRule{ID: 1}, adminID))
}
