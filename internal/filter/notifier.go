package filter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"chatfilter/internal/broker"
	"chatfilter/internal/constants"
	"chatfilter/pkg/models"
	"chatfilter/pkg/tracing"
)

// ConfigEventProducer publishes rule changes to the config update topic.
type ConfigEventProducer struct {
	producer broker.Producer
	topic    string
}

func NewConfigEventProducer(producer broker.Producer, topic string) *ConfigEventProducer {
	return &ConfigEventProducer{
		producer: producer,
		topic:    topic,
	}
}

func (p *ConfigEventProducer) PublishRuleChange(ctx context.Context, action string, rule *FilterRule, changedBy int64) error {
	if p.producer == nil || p.topic == "" {
		return nil
	}

	event := models.NewRuleEventBuilder().
		WithID(uuid.New().String()).
		WithSource(constants.ServiceName).
		WithTimestamp(time.Now()).
		WithRule(rule.ID, rule.Active).
		WithAction(action).
		WithChangedBy(changedBy).
		WithTraceID(tracing.TraceID(ctx)).
		Build()

	if rule.Channel != nil {
		event.SetMetadata("channel_id", *rule.Channel)
	}

	return p.producer.Publish(ctx, p.topic, *event)
}
