package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"rosterid/internal/identity/models"
	id "rosterid/pkg/domain"
	"rosterid/pkg/platform/sentinel"
	txcontext "rosterid/pkg/platform/tx"
)

// PostgresStore persists the identity graph in master_identities and
// identity_mappings. Inside RunInTx, identity reads take row locks.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	err := txcontext.Run(ctx, s.db, &sql.TxOptions{Isolation: sql.LevelRepeatableRead}, func(ctx context.Context) error {
		return fn(ctx, s)
	})
	return translate(err)
}

const identityColumns = `id, kind, canonical_name, name_confidence, metadata, status, version,
	created_at, updated_at, deleted_at`

func (s *PostgresStore) CreateIdentity(ctx context.Context, identity *models.MasterIdentity) error {
	metadata, err := json.Marshal(identity.Metadata)
	if err != nil {
		return fmt.Errorf("marshal identity metadata: %w", err)
	}
	query := `INSERT INTO master_identities (` + identityColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err = txcontext.Pick(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(identity.ID),
		string(identity.Kind),
		identity.CanonicalName,
		identity.NameConfidence,
		string(metadata),
		string(identity.Status),
		identity.Version,
		identity.CreatedAt,
		identity.UpdatedAt,
		identity.DeletedAt,
	)
	if err != nil {
		return translate(fmt.Errorf("insert identity: %w", err))
	}
	return nil
}

func (s *PostgresStore) FindIdentity(ctx context.Context, identityID id.IdentityID) (*models.MasterIdentity, error) {
	query := `SELECT ` + identityColumns + ` FROM master_identities WHERE id = $1`
	if _, inTx := txcontext.From(ctx); inTx {
		query += ` FOR UPDATE`
	}
	identity, err := scanIdentity(txcontext.Pick(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(identityID)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, translate(fmt.Errorf("find identity: %w", err))
	}
	return identity, nil
}

func (s *PostgresStore) UpdateIdentity(ctx context.Context, identity *models.MasterIdentity) error {
	metadata, err := json.Marshal(identity.Metadata)
	if err != nil {
		return fmt.Errorf("marshal identity metadata: %w", err)
	}
	query := `
		UPDATE master_identities
		SET canonical_name = $2, name_confidence = $3, metadata = $4, status = $5,
			version = version + 1, updated_at = $6, deleted_at = $7
		WHERE id = $1 AND version = $8
	`
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(identity.ID),
		identity.CanonicalName,
		identity.NameConfidence,
		string(metadata),
		string(identity.Status),
		identity.UpdatedAt,
		identity.DeletedAt,
		identity.Version,
	)
	if err != nil {
		return translate(fmt.Errorf("update identity: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update identity rows: %w", err)
	}
	if affected == 0 {
		if _, findErr := s.FindIdentity(ctx, identity.ID); errors.Is(findErr, sentinel.ErrNotFound) {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrConflict
	}
	identity.Version++
	return nil
}

func (s *PostgresStore) DeleteIdentity(ctx context.Context, identityID id.IdentityID, at time.Time) error {
	query := `
		UPDATE master_identities
		SET status = $2, deleted_at = $3, updated_at = $3, version = version + 1
		WHERE id = $1 AND status = $4
	`
	res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(identityID),
		string(models.IdentityStatusDeleted),
		at,
		string(models.IdentityStatusActive),
	)
	if err != nil {
		return translate(fmt.Errorf("delete identity: %w", err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete identity rows: %w", err)
	}
	if affected == 0 {
		if _, findErr := s.FindIdentity(ctx, identityID); findErr != nil {
			return findErr
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresStore) ListIdentities(ctx context.Context, kind id.EntityKind) ([]*models.MasterIdentity, error) {
	query := `SELECT ` + identityColumns + ` FROM master_identities
		WHERE kind = $1 AND status = $2
		ORDER BY created_at, id`
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, query, string(kind), string(models.IdentityStatusActive))
	if err != nil {
		return nil, translate(fmt.Errorf("list identities: %w", err))
	}
	defer rows.Close()

	out := make([]*models.MasterIdentity, 0)
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		out = append(out, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return out, nil
}

const mappingColumns = `id, identity_id, kind, external_id, season, display_name, confidence, method,
	created_at, updated_at`

func (s *PostgresStore) FindMapping(ctx context.Context, mappingID id.MappingID) (*models.IdentityMapping, error) {
	return s.findMapping(ctx, `WHERE id = $1`, uuid.UUID(mappingID))
}

func (s *PostgresStore) FindMappingByRecord(ctx context.Context, key models.RecordKey) (*models.IdentityMapping, error) {
	return s.findMapping(ctx, `WHERE kind = $1 AND external_id = $2 AND season = $3`,
		string(key.Kind), key.ExternalID, key.Season)
}

func (s *PostgresStore) findMapping(ctx context.Context, where string, args ...any) (*models.IdentityMapping, error) {
	query := `SELECT ` + mappingColumns + ` FROM identity_mappings ` + where
	m, err := scanMapping(txcontext.Pick(ctx, s.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, translate(fmt.Errorf("find mapping: %w", err))
	}
	return m, nil
}

func (s *PostgresStore) ListMappings(ctx context.Context, identityID id.IdentityID) ([]*models.IdentityMapping, error) {
	return s.listMappings(ctx, `WHERE identity_id = $1`, uuid.UUID(identityID))
}

func (s *PostgresStore) ListMappingsByExternalID(ctx context.Context, kind id.EntityKind, externalID string) ([]*models.IdentityMapping, error) {
	return s.listMappings(ctx, `WHERE kind = $1 AND external_id = $2`, string(kind), externalID)
}

func (s *PostgresStore) listMappings(ctx context.Context, where string, args ...any) ([]*models.IdentityMapping, error) {
	query := `SELECT ` + mappingColumns + ` FROM identity_mappings ` + where + ` ORDER BY season, external_id`
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translate(fmt.Errorf("list mappings: %w", err))
	}
	defer rows.Close()

	out := make([]*models.IdentityMapping, 0)
	for rows.Next() {
		m, err := scanMapping(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mappings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) UpsertMapping(ctx context.Context, mapping *models.IdentityMapping) (*models.IdentityMapping, error) {
	query := `
		INSERT INTO identity_mappings (` + mappingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (kind, external_id, season) DO UPDATE SET
			identity_id = EXCLUDED.identity_id,
			display_name = EXCLUDED.display_name,
			confidence = EXCLUDED.confidence,
			method = EXCLUDED.method,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + mappingColumns
	stored, err := scanMapping(txcontext.Pick(ctx, s.db).QueryRowContext(ctx, query,
		uuid.UUID(mapping.ID),
		uuid.UUID(mapping.IdentityID),
		string(mapping.Record.Kind),
		mapping.Record.ExternalID,
		mapping.Record.Season,
		mapping.DisplayName,
		mapping.Confidence,
		string(mapping.Method),
		mapping.CreatedAt,
		mapping.UpdatedAt,
	))
	if err != nil {
		return nil, translate(fmt.Errorf("upsert mapping: %w", err))
	}
	return stored, nil
}

func (s *PostgresStore) ReassignMappings(ctx context.Context, mappingIDs []id.MappingID, identityID id.IdentityID, at time.Time) error {
	if len(mappingIDs) == 0 {
		return nil
	}
	// A partial match must not leave some mappings moved.
	return s.RunInTx(ctx, func(ctx context.Context, _ Store) error {
		res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx,
			`UPDATE identity_mappings SET identity_id = $1, updated_at = $2 WHERE id = ANY($3)`,
			uuid.UUID(identityID), at, pq.Array(uuidStrings(mappingIDs)),
		)
		if err != nil {
			return translate(fmt.Errorf("reassign mappings: %w", err))
		}
		return expectAffected(res, len(mappingIDs))
	})
}

func (s *PostgresStore) DeleteMappings(ctx context.Context, mappingIDs []id.MappingID) error {
	if len(mappingIDs) == 0 {
		return nil
	}
	return s.RunInTx(ctx, func(ctx context.Context, _ Store) error {
		res, err := txcontext.Pick(ctx, s.db).ExecContext(ctx,
			`DELETE FROM identity_mappings WHERE id = ANY($1)`,
			pq.Array(uuidStrings(mappingIDs)),
		)
		if err != nil {
			return translate(fmt.Errorf("delete mappings: %w", err))
		}
		return expectAffected(res, len(mappingIDs))
	})
}

func (s *PostgresStore) LatestSeason(ctx context.Context, identityID id.IdentityID) (int, error) {
	var latest sql.NullInt64
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT MAX(season) FROM identity_mappings WHERE identity_id = $1`,
		uuid.UUID(identityID),
	).Scan(&latest)
	if err != nil {
		return 0, translate(fmt.Errorf("latest season: %w", err))
	}
	return int(latest.Int64), nil
}

// expectAffected reports ErrNotFound when fewer rows changed than ids were
// named. The surrounding transaction rolls back the partial write.
func expectAffected(res sql.Result, want int) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if int(affected) != want {
		return sentinel.ErrNotFound
	}
	return nil
}

func uuidStrings(ids []id.MappingID) []string {
	out := make([]string, len(ids))
	for i, v := range ids {
		out[i] = v.String()
	}
	return out
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (*models.MasterIdentity, error) {
	var (
		identity   models.MasterIdentity
		identityID uuid.UUID
		kind       string
		status     string
		metadata   []byte
	)
	err := row.Scan(
		&identityID,
		&kind,
		&identity.CanonicalName,
		&identity.NameConfidence,
		&metadata,
		&status,
		&identity.Version,
		&identity.CreatedAt,
		&identity.UpdatedAt,
		&identity.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(metadata, &identity.Metadata); err != nil {
		return nil, fmt.Errorf("decode identity metadata: %w", err)
	}
	identity.ID = id.IdentityID(identityID)
	identity.Kind = id.EntityKind(kind)
	identity.Status = models.IdentityStatus(status)
	return &identity, nil
}

func scanMapping(row rowScanner) (*models.IdentityMapping, error) {
	var (
		m          models.IdentityMapping
		mappingID  uuid.UUID
		identityID uuid.UUID
		kind       string
		method     string
	)
	err := row.Scan(
		&mappingID,
		&identityID,
		&kind,
		&m.Record.ExternalID,
		&m.Record.Season,
		&m.DisplayName,
		&m.Confidence,
		&method,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	m.ID = id.MappingID(mappingID)
	m.IdentityID = id.IdentityID(identityID)
	m.Record.Kind = id.EntityKind(kind)
	m.Method = models.MatchMethod(method)
	return &m, nil
}

// translate maps contention and uniqueness failures to ErrConflict and
// foreign-key failures to ErrNotFound.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01", "23505":
			return fmt.Errorf("%w: %s", sentinel.ErrConflict, pqErr.Message)
		case "23503":
			return fmt.Errorf("%w: %s", sentinel.ErrNotFound, pqErr.Message)
		}
	}
	return err
}
