// Package store persists the identity graph: master identities and the
// per-season mappings that bind raw records to them.
//
// Stores return sentinel errors (ErrNotFound, ErrConflict, ErrInvalidState);
// the service layer translates them into domain errors.
package store

import (
	"context"
	"time"

	"rosterid/internal/identity/models"
	id "rosterid/pkg/domain"
)

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks Store

// Store is the Identity Graph Store.
//
// Lookups of identities return deleted identities too; callers check Status.
// UpdateIdentity compares identity.Version with the stored version and fails
// with ErrConflict on mismatch; on success the stored and passed versions
// are both incremented.
type Store interface {
	CreateIdentity(ctx context.Context, identity *models.MasterIdentity) error
	FindIdentity(ctx context.Context, identityID id.IdentityID) (*models.MasterIdentity, error)
	UpdateIdentity(ctx context.Context, identity *models.MasterIdentity) error
	DeleteIdentity(ctx context.Context, identityID id.IdentityID, at time.Time) error
	ListIdentities(ctx context.Context, kind id.EntityKind) ([]*models.MasterIdentity, error)

	FindMapping(ctx context.Context, mappingID id.MappingID) (*models.IdentityMapping, error)
	FindMappingByRecord(ctx context.Context, key models.RecordKey) (*models.IdentityMapping, error)
	ListMappings(ctx context.Context, identityID id.IdentityID) ([]*models.IdentityMapping, error)
	ListMappingsByExternalID(ctx context.Context, kind id.EntityKind, externalID string) ([]*models.IdentityMapping, error)
	// UpsertMapping inserts mapping or, when its RecordKey is already mapped,
	// rewrites the existing row in place. The stored row is returned.
	UpsertMapping(ctx context.Context, mapping *models.IdentityMapping) (*models.IdentityMapping, error)
	// ReassignMappings moves every named mapping to identityID. Unknown ids
	// fail the whole call with ErrNotFound.
	ReassignMappings(ctx context.Context, mappingIDs []id.MappingID, identityID id.IdentityID, at time.Time) error
	DeleteMappings(ctx context.Context, mappingIDs []id.MappingID) error
	// LatestSeason is the most recent season mapped to identityID, or 0.
	LatestSeason(ctx context.Context, identityID id.IdentityID) (int, error)

	// RunInTx runs fn against a transactional view. Any error from fn leaves
	// the graph as it was before the call.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}
