package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fabworks/rackforge/internal/repository"
)

// ChangeLogRepository implements repository.ChangeLog for SQLite
type ChangeLogRepository struct {
	db *DB
}

// NewChangeLogRepository creates a new ChangeLogRepository
func NewChangeLogRepository(db *DB) *ChangeLogRepository {
	return &ChangeLogRepository{db: db}
}

// Append inserts one change entry
func (r *ChangeLogRepository) Append(ctx context.Context, entry repository.ChangeEntry) error {
	if entry.Action == "" {
		return repository.ErrInvalidInput
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	query := `
		INSERT INTO change_log (change_id, component, rack_id, action, session_id, description, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		entry.ChangeID,
		entry.Component,
		entry.RackID,
		entry.Action,
		entry.SessionID,
		entry.Description,
		string(entry.Details),
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append change: %w", err)
	}
	return nil
}

// List returns the most recent entries, newest first
func (r *ChangeLogRepository) List(ctx context.Context, limit int) ([]repository.ChangeEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT change_id, component, rack_id, action, session_id, description, details, created_at
		FROM change_log
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list changes: %w", err)
	}
	defer rows.Close()

	var entries []repository.ChangeEntry
	for rows.Next() {
		var e repository.ChangeEntry
		var component, rackID, sessionID, description, details sql.NullString
		if err := rows.Scan(&e.ChangeID, &component, &rackID, &e.Action, &sessionID, &description, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		e.Component = component.String
		e.RackID = rackID.String
		e.SessionID = sessionID.String
		e.Description = description.String
		if details.Valid {
			e.Details = []byte(details.String)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
