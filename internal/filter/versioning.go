package filter

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type RuleVersion struct {
	ID        string    `json:"id"`
	RuleID    int64     `json:"rule_id"`
	RuleData  string    `json:"rule_data"`
	Version   int       `json:"version"`
	ChangedBy int64     `json:"changed_by"`
	CreatedAt time.Time `json:"created_at"`
}

type AuditLog struct {
	ID        string                 `json:"id"`
	RuleID    *int64                 `json:"rule_id,omitempty"`
	Action    string                 `json:"action"`
	OldValue  map[string]interface{} `json:"old_value,omitempty"`
	NewValue  map[string]interface{} `json:"new_value,omitempty"`
	ChangedBy int64                  `json:"changed_by"`
	ChannelID *int64                 `json:"channel_id,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

type VersioningRepository interface {
	CreateVersion(ctx context.Context, version *RuleVersion) error
	GetVersions(ctx context.Context, ruleID int64) ([]RuleVersion, error)
	GetNextVersion(ctx context.Context, ruleID int64) (int, error)
	CreateAuditLog(ctx context.Context, log *AuditLog) error
	GetAuditLogs(ctx context.Context, ruleID *int64, limit int) ([]AuditLog, error)
}

type postgresVersioningRepository struct {
	db *sql.DB
}

func NewVersioningRepository(db *sql.DB) VersioningRepository {
	return &postgresVersioningRepository{db: db}
}

func (r *postgresVersioningRepository) CreateVersion(ctx context.Context, version *RuleVersion) error {
	if version.ID == "" {
		version.ID = uuid.New().String()
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO rule_versions (id, rule_id, rule_data, version, changed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		version.ID, version.RuleID, version.RuleData,
		version.Version, version.ChangedBy, version.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create rule version: %w", err)
	}

	return nil
}

func (r *postgresVersioningRepository) GetVersions(ctx context.Context, ruleID int64) ([]RuleVersion, error) {
	query := `
		SELECT id, rule_id, rule_data, version, changed_by, created_at
		FROM rule_versions
		WHERE rule_id = $1
		ORDER BY version DESC
	`

	rows, err := r.db.QueryContext(ctx, query, ruleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query versions: %w", err)
	}
	defer rows.Close()

	var versions []RuleVersion
	for rows.Next() {
		var v RuleVersion
		if err := rows.Scan(&v.ID, &v.RuleID, &v.RuleData, &v.Version, &v.ChangedBy, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		versions = append(versions, v)
	}

	return versions, rows.Err()
}

func (r *postgresVersioningRepository) GetNextVersion(ctx context.Context, ruleID int64) (int, error) {
	query := `SELECT COALESCE(MAX(version), 0) + 1 FROM rule_versions WHERE rule_id = $1`

	var version int
	if err := r.db.QueryRowContext(ctx, query, ruleID).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get next version: %w", err)
	}

	return version, nil
}

func (r *postgresVersioningRepository) CreateAuditLog(ctx context.Context, log *AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.Timestamp.IsZero() {
		log.Timestamp = time.Now()
	}

	var oldValueJSON, newValueJSON []byte
	var err error

	if log.OldValue != nil {
		oldValueJSON, err = json.Marshal(log.OldValue)
		if err != nil {
			return fmt.Errorf("failed to marshal old value: %w", err)
		}
	}

	if log.NewValue != nil {
		newValueJSON, err = json.Marshal(log.NewValue)
		if err != nil {
			return fmt.Errorf("failed to marshal new value: %w", err)
		}
	}

	query := `
		INSERT INTO rule_audit_logs (id, rule_id, action, old_value, new_value, changed_by, channel_id, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = r.db.ExecContext(ctx, query,
		log.ID, nullID(log.RuleID), log.Action,
		oldValueJSON, newValueJSON, log.ChangedBy, nullID(log.ChannelID), log.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}

	return nil
}

func (r *postgresVersioningRepository) GetAuditLogs(ctx context.Context, ruleID *int64, limit int) ([]AuditLog, error) {
	query := `
		SELECT id, rule_id, action, old_value, new_value, changed_by, channel_id, timestamp
		FROM rule_audit_logs
		WHERE $1::BIGINT IS NULL OR rule_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, nullID(ruleID), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit logs: %w", err)
	}
	defer rows.Close()

	var logs []AuditLog
	for rows.Next() {
		var (
			log                        AuditLog
			oldValueJSON, newValueJSON []byte
			logRuleID, channelID       sql.NullInt64
		)

		if err := rows.Scan(
			&log.ID, &logRuleID, &log.Action,
			&oldValueJSON, &newValueJSON, &log.ChangedBy, &channelID, &log.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit log: %w", err)
		}

		log.RuleID = idPtr(logRuleID)
		log.ChannelID = idPtr(channelID)

		if len(oldValueJSON) > 0 {
			if err := json.Unmarshal(oldValueJSON, &log.OldValue); err != nil {
				return nil, fmt.Errorf("failed to unmarshal old value: %w", err)
			}
		}

		if len(newValueJSON) > 0 {
			if err := json.Unmarshal(newValueJSON, &log.NewValue); err != nil {
				return nil, fmt.Errorf("failed to unmarshal new value: %w", err)
			}
		}

		logs = append(logs, log)
	}

	return logs, rows.Err()
}

func ruleToJSON(rule *FilterRule) (string, error) {
	data, err := json.Marshal(rule)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
