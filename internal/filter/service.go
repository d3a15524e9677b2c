package filter

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"chatfilter/internal/logger"
	pkgerrors "chatfilter/pkg/errors"
	"chatfilter/pkg/logging"
	"chatfilter/pkg/metrics"
	"chatfilter/pkg/tracing"
)

// Service runs a ban request end to end: resolve, authorize, then
// toggle-or-create.
type Service struct {
	resolver   *Resolver
	authorizer *Authorizer
	store      *Store
	logger     logger.Logger
}

func NewService(resolver *Resolver, authorizer *Authorizer, store *Store, log logger.Logger) *Service {
	return &Service{
		resolver:   resolver,
		authorizer: authorizer,
		store:      store,
		logger:     log,
	}
}

func (s *Service) Store() *Store {
	return s.store
}

// ApplyBanRequest never returns an error: every failure, domain or
// infrastructure, is reported through the Result.
func (s *Service) ApplyBanRequest(ctx context.Context, state State, params Params, actor Actor, contextChannel Channel) Result {
	start := time.Now()
	ctx = logging.WithActor(ctx, actor.ID)

	ctx, span := tracing.GetTracer("filter-service").Start(ctx, "service.ApplyBanRequest")
	defer span.End()
	span.SetAttributes(
		attribute.String("ban.state", string(state)),
		attribute.Int64("ban.actor", actor.ID),
		attribute.Int64("ban.context_channel", contextChannel.ID),
	)

	outcome, err := s.apply(ctx, state, params, actor, contextChannel)
	metrics.ObserveBanRequestDuration(string(state), time.Since(start))

	if err != nil {
		return s.failure(ctx, state, params, err)
	}

	label := "toggled"
	if outcome.Created {
		label = "created"
	}
	metrics.IncBanRequest(string(state), label)

	s.logger.InfowCtx(ctx, "Ban request applied",
		"state", state,
		"rule_id", outcome.Rule.ID,
		"created", outcome.Created,
		"active", outcome.Rule.Active,
	)

	return Result{
		Success: true,
		Message: successReply(outcome),
		Created: outcome.Created,
		Rule:    outcome.Rule,
	}
}

func (s *Service) apply(ctx context.Context, state State, params Params, actor Actor, contextChannel Channel) (*Outcome, error) {
	scope, err := s.resolver.ResolveScope(ctx, params, actor, contextChannel)
	if err != nil {
		return nil, err
	}

	grant, err := s.authorizer.Authorize(ctx, scope, actor)
	if err != nil {
		return nil, err
	}

	return s.store.ToggleOrCreate(ctx, scope.Scope, actor, grant, state)
}

func (s *Service) failure(ctx context.Context, state State, params Params, err error) Result {
	if pkgerrors.IsDomain(err) {
		code := pkgerrors.CodeOf(err)
		metrics.IncBanRequest(string(state), code)
		s.logger.InfowCtx(ctx, "Ban request rejected",
			"state", state,
			"kind", code,
			"params", params,
		)
		return Result{Kind: code, Message: replyFor(state, err)}
	}

	metrics.IncBanRequest(string(state), pkgerrors.ErrInternal.Code)
	s.logger.ErrorwCtx(ctx, "Ban request failed",
		"state", state,
		"params", params,
		"error", err,
	)
	return Result{Kind: pkgerrors.ErrInternal.Code, Message: internalErrorReply}
}

func asAppError(err error, target **pkgerrors.Error) bool {
	return errors.As(err, target)
}
