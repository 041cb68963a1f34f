package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sheetal/scoops-api/internal/domain/adminlog"
	"github.com/sheetal/scoops-api/internal/domain/user"
)

const (
	recordLogSQL = `INSERT INTO admin_logs (admin_user_id, action)
		VALUES ($1, $2)
		RETURNING id, action_time`

	listLogsSQL = `SELECT l.id, l.admin_user_id, u.username, l.action, l.action_time
		FROM admin_logs l
		JOIN users u ON u.id = l.admin_user_id
		ORDER BY l.action_time DESC, l.id DESC`
)

var _ adminlog.Repository = (*AdminLogRepository)(nil)

// AdminLogRepository implements adminlog.Repository backed by PostgreSQL.
// Only INSERT and SELECT statements exist here; the audit trail has no
// mutation path at any layer.
type AdminLogRepository struct {
	pool *pgxpool.Pool
}

// NewAdminLogRepository returns an AdminLogRepository that uses the given pool.
func NewAdminLogRepository(pool *pgxpool.Pool) *AdminLogRepository {
	return &AdminLogRepository{pool: pool}
}

// Record appends an audit entry for the given admin.
func (r *AdminLogRepository) Record(ctx context.Context, admin *user.User, action string) (*adminlog.Entry, error) {
	entry := &adminlog.Entry{
		AdminUserID:   admin.ID,
		AdminUsername: admin.Username,
		Action:        action,
	}
	err := r.pool.QueryRow(ctx, recordLogSQL, admin.ID, action).
		Scan(&entry.ID, &entry.ActionTime)
	if err != nil {
		return nil, fmt.Errorf("recording admin log: %w", err)
	}
	return entry, nil
}

// List returns all audit entries, newest first.
func (r *AdminLogRepository) List(ctx context.Context) ([]adminlog.Entry, error) {
	rows, err := r.pool.Query(ctx, listLogsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing admin logs: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (adminlog.Entry, error) {
		var e adminlog.Entry
		err := row.Scan(&e.ID, &e.AdminUserID, &e.AdminUsername, &e.Action, &e.ActionTime)
		return e, err
	})
}
