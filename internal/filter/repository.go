package filter

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"chatfilter/internal/constants"
	pkgerrors "chatfilter/pkg/errors"
	"chatfilter/pkg/metrics"
)

// Repository is the durable rule store. Lookups return (nil, nil) when no
// rule matches.
type Repository interface {
	FindByKey(ctx context.Context, key Key) (*FilterRule, error)
	GetRule(ctx context.Context, id int64) (*FilterRule, error)
	ListRules(ctx context.Context) ([]FilterRule, error)
	CreateRule(ctx context.Context, rule *FilterRule) error
	SetActive(ctx context.Context, id int64, active bool) (*FilterRule, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

const ruleColumns = `id, type, channel_id, command_id, invocation, user_id, issued_by, active, response, reason, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (*FilterRule, error) {
	var (
		rule                   FilterRule
		channel, command, user sql.NullInt64
		invocation, reason     sql.NullString
		response               string
	)
	if err := row.Scan(
		&rule.ID, &rule.Type, &channel, &command, &invocation, &user,
		&rule.IssuedBy, &rule.Active, &response, &reason, &rule.CreatedAt, &rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	rule.Channel = idPtr(channel)
	rule.Command = idPtr(command)
	rule.Invocation = stringPtr(invocation)
	rule.User = idPtr(user)
	rule.Response = Response(response)
	rule.Reason = stringPtr(reason)
	return &rule, nil
}

func (r *PostgresRepository) FindByKey(ctx context.Context, key Key) (rule *FilterRule, err error) {
	defer observe("find_by_key", time.Now(), &err)

	query := `
		SELECT ` + ruleColumns + `
		FROM filter_rules
		WHERE type = $1
		  AND channel_id IS NOT DISTINCT FROM $2::BIGINT
		  AND command_id IS NOT DISTINCT FROM $3::BIGINT
		  AND invocation IS NOT DISTINCT FROM $4::TEXT
		  AND user_id IS NOT DISTINCT FROM $5::BIGINT
	`

	row := r.db.QueryRowContext(ctx, query, key.Type, key.Channel, key.Command, key.Invocation, key.User)
	rule, err = scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find rule: %w", err)
	}
	return rule, nil
}

func (r *PostgresRepository) GetRule(ctx context.Context, id int64) (rule *FilterRule, err error) {
	defer observe("get", time.Now(), &err)

	query := `SELECT ` + ruleColumns + ` FROM filter_rules WHERE id = $1`

	rule, err = scanRule(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}
	return rule, nil
}

func (r *PostgresRepository) ListRules(ctx context.Context) (rules []FilterRule, err error) {
	defer observe("list", time.Now(), &err)

	query := `SELECT ` + ruleColumns + ` FROM filter_rules WHERE type = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, constants.RuleTypeBlacklist)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rules: %w", err)
	}

	return rules, nil
}

func (r *PostgresRepository) CreateRule(ctx context.Context, rule *FilterRule) (err error) {
	defer observe("create", time.Now(), &err)

	if rule.Type == "" {
		rule.Type = constants.RuleTypeBlacklist
	}

	query := `
		INSERT INTO filter_rules (type, channel_id, command_id, invocation, user_id, issued_by, active, response, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRowContext(ctx, query,
		rule.Type, nullID(rule.Channel), nullID(rule.Command), nullString(rule.Invocation), nullID(rule.User),
		rule.IssuedBy, rule.Active, string(rule.Response), nullString(rule.Reason),
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", "rule with the same scope already exists")
		}
		return fmt.Errorf("failed to create rule: %w", err)
	}

	return nil
}

func (r *PostgresRepository) SetActive(ctx context.Context, id int64, active bool) (rule *FilterRule, err error) {
	defer observe("set_active", time.Now(), &err)

	query := `
		UPDATE filter_rules
		SET active = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + ruleColumns

	rule, err = scanRule(r.db.QueryRowContext(ctx, query, active, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rule %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}
	return rule, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint")
}

func observe(operation string, start time.Time, err *error) {
	metrics.ObserveDatabaseQuery(constants.ServiceName, "postgres", "filter_rules."+operation, time.Since(start), *err)
}
