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

// PostgresUserRegistry reads users from the users table. It is used when no
// MongoDB is configured.
type PostgresUserRegistry struct {
	db *sql.DB
}

func NewPostgresUserRegistry(db *sql.DB) *PostgresUserRegistry {
	return &PostgresUserRegistry{db: db}
}

func (r *PostgresUserRegistry) GetUser(ctx context.Context, nameOrID string) (user *filter.User, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveDatabaseQuery(constants.ServiceName, "postgres", "users.get", time.Since(start), err)
	}()

	query := `SELECT id, name FROM users WHERE LOWER(name) = LOWER($1)`
	arg := interface{}(nameOrID)
	if id, parseErr := strconv.ParseInt(nameOrID, 10, 64); parseErr == nil {
		query = `SELECT id, name FROM users WHERE id = $1`
		arg = id
	}

	var u filter.User
	err = r.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRegistry) IsAdmin(ctx context.Context, userID int64) (admin bool, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveDatabaseQuery(constants.ServiceName, "postgres", "users.is_admin", time.Since(start), err)
	}()

	err = r.db.QueryRowContext(ctx, `SELECT admin FROM users WHERE id = $1`, userID).Scan(&admin)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get user: %w", err)
	}
	return admin, nil
}
