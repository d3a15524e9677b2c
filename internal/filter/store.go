package filter

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"chatfilter/internal/constants"
	"chatfilter/internal/logger"
	pkgerrors "chatfilter/pkg/errors"
	"chatfilter/pkg/metrics"
	"chatfilter/pkg/models"
	"chatfilter/pkg/tracing"
)

// Store owns the ban rules. Mutations go through the repository under a
// per-scope lock; reads are served from the in-memory index.
type Store struct {
	repo           Repository
	locker         Locker
	index          *Index
	logger         logger.Logger
	versioningRepo VersioningRepository
	publisher      EventPublisher
}

type StoreOption func(*Store)

func WithVersioning(versioningRepo VersioningRepository) StoreOption {
	return func(s *Store) {
		s.versioningRepo = versioningRepo
	}
}

func WithEventPublisher(publisher EventPublisher) StoreOption {
	return func(s *Store) {
		s.publisher = publisher
	}
}

func WithLocker(locker Locker) StoreOption {
	return func(s *Store) {
		s.locker = locker
	}
}

func NewStore(repo Repository, log logger.Logger, opts ...StoreOption) *Store {
	s := &Store{
		repo:   repo,
		index:  NewIndex(),
		logger: log,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.locker == nil {
		s.locker = NewLocalLocker()
	}

	return s
}

// Reload replaces the index with the repository content.
func (s *Store) Reload(ctx context.Context, trigger string) error {
	ctx, span := tracing.GetTracer("filter-store").Start(ctx, "store.Reload")
	defer span.End()

	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		metrics.IncBanIndexReload(trigger, "error")
		span.RecordError(err)
		return fmt.Errorf("failed to load ban rules: %w", err)
	}

	s.index.Replace(rules)
	total, active := s.index.Counts()
	metrics.SetBanRuleCounts(total, active)
	metrics.IncBanIndexReload(trigger, "success")

	s.logger.InfowCtx(ctx, "Ban rules reloaded",
		"trigger", trigger,
		"total", total,
		"active", active,
	)
	return nil
}

// Refresh re-reads a single rule into the index.
func (s *Store) Refresh(ctx context.Context, id int64) error {
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to refresh rule %d: %w", id, err)
	}
	if rule == nil {
		return s.Reload(ctx, "refresh_miss")
	}
	s.index.Put(rule)
	total, active := s.index.Counts()
	metrics.SetBanRuleCounts(total, active)
	return nil
}

// ToggleOrCreate flips the rule matching scope to the requested state, or
// creates it when none exists. The lookup and the mutation happen under the
// scope's lock.
func (s *Store) ToggleOrCreate(ctx context.Context, scope Scope, actor Actor, grant *Grant, state State) (*Outcome, error) {
	ctx, span := tracing.GetTracer("filter-store").Start(ctx, "store.ToggleOrCreate")
	defer span.End()
	span.SetAttributes(
		attribute.String("ban.state", string(state)),
		attribute.String("ban.scope", scope.LockKey()),
	)

	unlock, err := s.locker.Lock(ctx, scope.LockKey())
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	defer unlock()

	existing, err := s.repo.FindByKey(ctx, scope.Key())
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	if existing != nil {
		return s.toggle(ctx, existing, actor, grant, state)
	}
	return s.create(ctx, scope, actor, grant, state)
}

func (s *Store) toggle(ctx context.Context, existing *FilterRule, actor Actor, grant *Grant, state State) (*Outcome, error) {
	if existing.IssuedBy != actor.ID && !grant.Permissions.Admin {
		return nil, pkgerrors.ErrNotOwner.WithDetail("rule_id", existing.ID)
	}
	if existing.Active == state.Active() {
		return nil, pkgerrors.ErrAlreadyInState.WithDetail("rule_id", existing.ID)
	}

	oldValue := existing.ToMap()
	updated, err := s.repo.SetActive(ctx, existing.ID, state.Active())
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.index.Put(updated)
	s.afterMutation(ctx, updated, string(state), oldValue, actor)

	return &Outcome{Created: false, Rule: updated.Clone()}, nil
}

func (s *Store) create(ctx context.Context, scope Scope, actor Actor, grant *Grant, state State) (*Outcome, error) {
	if state == StateUnban {
		return nil, pkgerrors.ErrNothingToUnban
	}

	rule := &FilterRule{
		Type:       constants.RuleTypeBlacklist,
		Channel:    idPtr(scope.Channel),
		Command:    idPtr(scope.Command),
		Invocation: stringPtr(scope.Invocation),
		User:       idPtr(scope.User),
		IssuedBy:   actor.ID,
		Active:     true,
		Response:   grant.Response,
		Reason:     cloneString(grant.Reason),
	}

	if err := s.repo.CreateRule(ctx, rule); err != nil {
		// Another instance created the same scope first; it is banned now.
		if pkgerrors.IsConflict(err) {
			return nil, s.adoptWinner(ctx, scope, err)
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}

	s.index.Put(rule)
	s.afterMutation(ctx, rule, models.ActionCreate, nil, actor)

	return &Outcome{Created: true, Rule: rule.Clone()}, nil
}

// adoptWinner indexes the rule another instance inserted for scope so that
// IsBanned does not wait for its event or the next reload.
func (s *Store) adoptWinner(ctx context.Context, scope Scope, conflict error) error {
	alreadyErr := pkgerrors.ErrAlreadyInState.WithCause(conflict)

	winner, err := s.repo.FindByKey(ctx, scope.Key())
	if err != nil || winner == nil {
		s.logger.WarnwCtx(ctx, "Failed to load conflicting rule",
			"scope", scope.LockKey(),
			"error", err,
		)
		return alreadyErr
	}

	s.index.Put(winner)
	total, active := s.index.Counts()
	metrics.SetBanRuleCounts(total, active)
	return alreadyErr.WithDetail("rule_id", winner.ID)
}

// afterMutation records history and announces the change. Failures are
// logged and do not affect the result.
func (s *Store) afterMutation(ctx context.Context, rule *FilterRule, action string, oldValue map[string]interface{}, actor Actor) {
	total, active := s.index.Counts()
	metrics.SetBanRuleCounts(total, active)

	if s.versioningRepo != nil {
		s.createVersionAndAudit(ctx, rule, action, oldValue, actor)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRuleChange(ctx, action, rule, actor.ID); err != nil {
			s.logger.WarnwCtx(ctx, "Failed to publish rule change",
				"rule_id", rule.ID,
				"action", action,
				"error", err,
			)
		}
	}
}

func (s *Store) createVersionAndAudit(ctx context.Context, rule *FilterRule, action string, oldValue map[string]interface{}, actor Actor) {
	ruleJSON, err := ruleToJSON(rule)
	if err != nil {
		s.logger.WarnwCtx(ctx, "Failed to serialize rule for versioning", "rule_id", rule.ID, "error", err)
		return
	}

	version, err := s.versioningRepo.GetNextVersion(ctx, rule.ID)
	if err != nil {
		s.logger.WarnwCtx(ctx, "Failed to get next rule version", "rule_id", rule.ID, "error", err)
		return
	}

	if err := s.versioningRepo.CreateVersion(ctx, &RuleVersion{
		RuleID:    rule.ID,
		RuleData:  ruleJSON,
		Version:   version,
		ChangedBy: actor.ID,
	}); err != nil {
		s.logger.WarnwCtx(ctx, "Failed to create rule version", "rule_id", rule.ID, "error", err)
		return
	}

	ruleID := rule.ID
	if err := s.versioningRepo.CreateAuditLog(ctx, &AuditLog{
		RuleID:    &ruleID,
		Action:    action,
		OldValue:  oldValue,
		NewValue:  rule.ToMap(),
		ChangedBy: actor.ID,
		ChannelID: cloneInt(rule.Channel),
	}); err != nil {
		s.logger.WarnwCtx(ctx, "Failed to create audit log", "rule_id", rule.ID, "error", err)
	}
}

func (s *Store) Get(ctx context.Context, id int64) (*FilterRule, error) {
	if rule, ok := s.index.GetByID(id); ok {
		return rule, nil
	}
	rule, err := s.repo.GetRule(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	if rule == nil {
		return nil, pkgerrors.ErrNotFound.WithDetail("kind", "rule").WithDetail("id", id)
	}
	return rule, nil
}

func (s *Store) List() []FilterRule {
	return s.index.List()
}

// IsBanned reports the active rule, if any, that blocks the target.
func (s *Store) IsBanned(target Scope) (*FilterRule, bool) {
	return s.index.Match(target)
}

func (s *Store) Versions(ctx context.Context, ruleID int64) ([]RuleVersion, error) {
	if s.versioningRepo == nil {
		return nil, pkgerrors.ErrInternal.WithDetail("message", "versioning not enabled")
	}
	versions, err := s.versioningRepo.GetVersions(ctx, ruleID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return versions, nil
}

func (s *Store) AuditLogs(ctx context.Context, ruleID *int64, limit int) ([]AuditLog, error) {
	if s.versioningRepo == nil {
		return nil, pkgerrors.ErrInternal.WithDetail("message", "audit logging not enabled")
	}
	if limit <= 0 || limit > constants.MaxLimit {
		limit = constants.DefaultLimit
	}
	logs, err := s.versioningRepo.GetAuditLogs(ctx, ruleID, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrInternal)
	}
	return logs, nil
}
