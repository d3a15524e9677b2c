package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"chatfilter/internal/constants"
	"chatfilter/internal/filter"
	"chatfilter/pkg/metrics"
)

// ChannelStore resolves channels and the channel-level roles of users.
type ChannelStore interface {
	filter.ChannelRegistry
	ChannelRoles(ctx context.Context, channelID, userID int64) (owner, ambassador bool, err error)
}

type PostgresChannelRegistry struct {
	db *sql.DB
}

func NewPostgresChannelRegistry(db *sql.DB) *PostgresChannelRegistry {
	return &PostgresChannelRegistry{db: db}
}

// GetChannel accepts a numeric channel ID or a case-insensitive name.
func (r *PostgresChannelRegistry) GetChannel(ctx context.Context, nameOrID string) (channel *filter.Channel, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveDatabaseQuery(constants.ServiceName, "postgres", "channels.get", time.Since(start), err)
	}()

	query := `SELECT id, name, platform FROM channels WHERE LOWER(name) = LOWER($1)`
	arg := interface{}(nameOrID)
	if id, parseErr := strconv.ParseInt(nameOrID, 10, 64); parseErr == nil {
		query = `SELECT id, name, platform FROM channels WHERE id = $1`
		arg = id
	}

	var c filter.Channel
	err = r.db.QueryRowContext(ctx, query, arg).Scan(&c.ID, &c.Name, &c.Platform)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	return &c, nil
}

func (r *PostgresChannelRegistry) ChannelRoles(ctx context.Context, channelID, userID int64) (owner, ambassador bool, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveDatabaseQuery(constants.ServiceName, "postgres", "channels.roles", time.Since(start), err)
	}()

	query := `
		SELECT
			COALESCE(c.owner_id = $2, FALSE),
			EXISTS (SELECT 1 FROM channel_ambassadors a WHERE a.channel_id = c.id AND a.user_id = $2)
		FROM channels c
		WHERE c.id = $1
	`

	err = r.db.QueryRowContext(ctx, query, channelID, userID).Scan(&owner, &ambassador)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to get channel roles: %w", err)
	}
	return owner, ambassador, nil
}
