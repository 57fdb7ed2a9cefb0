package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	id "rosterid/pkg/domain"
	audit "rosterid/pkg/platform/audit"
	"rosterid/pkg/platform/sentinel"
	txcontext "rosterid/pkg/platform/tx"
)

// Store implements audit.Store over the append-only audit_entries table.
type Store struct {
	db *sql.DB
}

// New creates a PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const entryColumns = `id, entity_type, entity_id, action, before_state, after_state,
	reason, performed_by, group_id, rollback_of, created_at`

// Append inserts entry. Idempotent via ON CONFLICT DO NOTHING.
func (s *Store) Append(ctx context.Context, entry audit.Entry) error {
	query := `
		INSERT INTO audit_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`
	var rollbackOf *uuid.UUID
	if entry.RollbackOf != nil {
		r := uuid.UUID(*entry.RollbackOf)
		rollbackOf = &r
	}
	_, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(entry.ID),
		string(entry.EntityType),
		entry.EntityID,
		string(entry.Action),
		nullableJSON(entry.BeforeState),
		nullableJSON(entry.AfterState),
		entry.Reason,
		entry.PerformedBy,
		entry.GroupID,
		rollbackOf,
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, entryID id.AuditID) (*audit.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM audit_entries WHERE id = $1`
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, query, uuid.UUID(entryID))
	if err != nil {
		return nil, fmt.Errorf("query audit entry: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return &entries[0], nil
}

// List returns entries matching filter, newest first.
func (s *Store) List(ctx context.Context, filter audit.Filter) ([]audit.Entry, error) {
	var (
		clauses []string
		args    []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}
	if filter.EntityType != "" {
		add("entity_type = $%d", string(filter.EntityType))
	}
	if filter.EntityID != "" {
		add("entity_id = $%d", filter.EntityID)
	}
	if filter.PerformedBy != "" {
		add("performed_by = $%d", filter.PerformedBy)
	}
	if filter.GroupID != "" {
		add("group_id = $%d", filter.GroupID)
	}
	if filter.Action != "" {
		add("action = $%d", string(filter.Action))
	}
	if !filter.Since.IsZero() {
		add("created_at >= $%d", filter.Since)
	}
	if !filter.Until.IsZero() {
		add("created_at < $%d", filter.Until)
	}

	query := `SELECT ` + entryColumns + ` FROM audit_entries`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, seq DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func (s *Store) HasRollback(ctx context.Context, entryID id.AuditID) (bool, error) {
	var exists bool
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM audit_entries WHERE rollback_of = $1)`,
		uuid.UUID(entryID),
	).Scan(&exists)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("query audit rollback: %w", err)
	}
	return exists, nil
}

func scanEntries(rows *sql.Rows) ([]audit.Entry, error) {
	entries := make([]audit.Entry, 0)
	for rows.Next() {
		var (
			entry      audit.Entry
			entryID    uuid.UUID
			entityType string
			action     string
			before     []byte
			after      []byte
			rollbackOf *uuid.UUID
		)
		err := rows.Scan(
			&entryID,
			&entityType,
			&entry.EntityID,
			&action,
			&before,
			&after,
			&entry.Reason,
			&entry.PerformedBy,
			&entry.GroupID,
			&rollbackOf,
			&entry.Timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.ID = id.AuditID(entryID)
		entry.EntityType = audit.EntityType(entityType)
		entry.Action = audit.Action(action)
		entry.BeforeState = before
		entry.AfterState = after
		if rollbackOf != nil {
			r := id.AuditID(*rollbackOf)
			entry.RollbackOf = &r
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
