package filter

import (
	"context"
	"math/rand"
	"time"

	"chatfilter/internal/constants"
	"chatfilter/internal/logger"
	"chatfilter/pkg/models"
)

// Reloader keeps the store's index in step with changes made by other
// instances, through config events and a periodic full reload.
type Reloader struct {
	store    *Store
	interval time.Duration
	logger   logger.Logger
}

func NewReloader(store *Store, interval time.Duration, log logger.Logger) *Reloader {
	return &Reloader{
		store:    store,
		interval: interval,
		logger:   log,
	}
}

// HandleRuleEvent is a broker.HandlerFunc for the config update topic.
func (r *Reloader) HandleRuleEvent(ctx context.Context, event models.RuleEvent) error {
	if event.EventType != models.EventTypeBanRuleUpdated {
		return nil
	}

	// Malformed events are dropped; the periodic reload still converges.
	if err := models.ValidateRuleEvent(&event); err != nil {
		r.logger.WarnwCtx(ctx, "Dropping invalid rule event",
			"event_id", event.ID,
			"error", err,
		)
		return nil
	}

	r.logger.InfowCtx(ctx, "Received rule update event",
		"event_id", event.ID,
		"source", event.Source,
		"action", event.Action,
		"rule_id", event.RuleID,
	)

	if event.Action == models.ActionReload || event.RuleID == 0 {
		return r.store.Reload(ctx, "event")
	}
	return r.store.Refresh(ctx, event.RuleID)
}

// Start reloads on every tick until ctx is done. A non-positive interval
// disables the periodic reload.
func (r *Reloader) Start(ctx context.Context) error {
	if r.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	for {
		select {
		case <-time.After(r.next()):
			if err := r.store.Reload(ctx, "periodic"); err != nil {
				r.logger.ErrorwCtx(ctx, "Failed to reload ban rules",
					"error", err,
				)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// next spreads reloads of several instances apart by up to
// ReloadJitterPercent of the interval.
func (r *Reloader) next() time.Duration {
	maxJitter := int64(r.interval) * constants.ReloadJitterPercent / 100
	if maxJitter <= 0 {
		return r.interval
	}
	return r.interval + time.Duration(rand.Int63n(maxJitter))
}
