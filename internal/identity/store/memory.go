package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"rosterid/internal/identity/models"
	id "rosterid/pkg/domain"
	"rosterid/pkg/platform/sentinel"
)

type externalKey struct {
	kind       id.EntityKind
	externalID string
}

type mappingSet map[id.MappingID]struct{}

// graph is the committed in-memory state with secondary indexes over the
// mappings. It is mutated only by commit.
type graph struct {
	identities map[id.IdentityID]*models.MasterIdentity
	mappings   map[id.MappingID]*models.IdentityMapping
	byRecord   map[models.RecordKey]id.MappingID
	byIdentity map[id.IdentityID]mappingSet
	byExternal map[externalKey]mappingSet
}

func newGraph() *graph {
	return &graph{
		identities: make(map[id.IdentityID]*models.MasterIdentity),
		mappings:   make(map[id.MappingID]*models.IdentityMapping),
		byRecord:   make(map[models.RecordKey]id.MappingID),
		byIdentity: make(map[id.IdentityID]mappingSet),
		byExternal: make(map[externalKey]mappingSet),
	}
}

func (g *graph) addMapping(m *models.IdentityMapping) {
	g.mappings[m.ID] = m
	g.byRecord[m.Record] = m.ID
	addToSet(g.byIdentity, m.IdentityID, m.ID)
	addToSet(g.byExternal, externalKey{m.Record.Kind, m.Record.ExternalID}, m.ID)
}

func (g *graph) removeMapping(mappingID id.MappingID) {
	m, ok := g.mappings[mappingID]
	if !ok {
		return
	}
	delete(g.mappings, mappingID)
	if g.byRecord[m.Record] == mappingID {
		delete(g.byRecord, m.Record)
	}
	removeFromSet(g.byIdentity, m.IdentityID, mappingID)
	removeFromSet(g.byExternal, externalKey{m.Record.Kind, m.Record.ExternalID}, mappingID)
}

func addToSet[K comparable](index map[K]mappingSet, key K, mappingID id.MappingID) {
	set, ok := index[key]
	if !ok {
		set = make(mappingSet)
		index[key] = set
	}
	set[mappingID] = struct{}{}
}

func removeFromSet[K comparable](index map[K]mappingSet, key K, mappingID id.MappingID) {
	set := index[key]
	delete(set, mappingID)
	if len(set) == 0 {
		delete(index, key)
	}
}

// overlay holds the writes of one transaction. A nil mapping and a nil
// record target mark deletions.
type overlay struct {
	identities map[id.IdentityID]*models.MasterIdentity
	mappings   map[id.MappingID]*models.IdentityMapping
	byRecord   map[models.RecordKey]id.MappingID
}

func newOverlay() *overlay {
	return &overlay{
		identities: make(map[id.IdentityID]*models.MasterIdentity),
		mappings:   make(map[id.MappingID]*models.IdentityMapping),
		byRecord:   make(map[models.RecordKey]id.MappingID),
	}
}

// commit applies the overlay. Touched mappings are removed first so record
// and identity indexes never point at a stale row.
func (o *overlay) commit(g *graph) {
	for identityID, identity := range o.identities {
		g.identities[identityID] = identity
	}
	for mappingID := range o.mappings {
		g.removeMapping(mappingID)
	}
	for _, m := range o.mappings {
		if m != nil {
			g.addMapping(m)
		}
	}
}

// InMemoryStore is a Store backed by indexed maps. Transactions write to an
// overlay that is applied on success, so their cost follows what they touch.
// Writers are serialised; readers see the last committed state.
type InMemoryStore struct {
	mu    sync.RWMutex
	write sync.Mutex
	g     *graph
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{g: newGraph()}
}

// RunInTx runs fn against an overlay on the committed graph and applies the
// overlay only when fn succeeds.
func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	s.write.Lock()
	defer s.write.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	// Only commit mutates s.g and commits hold s.write, so the transaction
	// reads the committed graph without s.mu.
	tx := &memTx{g: s.g, ov: newOverlay()}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	s.mu.Lock()
	tx.ov.commit(s.g)
	s.mu.Unlock()
	return nil
}

// mutate runs a single write as its own transaction.
func (s *InMemoryStore) mutate(ctx context.Context, fn func(tx *memTx) error) error {
	return s.RunInTx(ctx, func(_ context.Context, tx Store) error {
		return fn(tx.(*memTx))
	})
}

// view runs a read against the committed graph.
func (s *InMemoryStore) view(fn func(tx *memTx)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(&memTx{g: s.g})
}

func (s *InMemoryStore) CreateIdentity(ctx context.Context, identity *models.MasterIdentity) error {
	return s.mutate(ctx, func(tx *memTx) error { return tx.CreateIdentity(ctx, identity) })
}

func (s *InMemoryStore) UpdateIdentity(ctx context.Context, identity *models.MasterIdentity) error {
	return s.mutate(ctx, func(tx *memTx) error { return tx.UpdateIdentity(ctx, identity) })
}

func (s *InMemoryStore) DeleteIdentity(ctx context.Context, identityID id.IdentityID, at time.Time) error {
	return s.mutate(ctx, func(tx *memTx) error { return tx.DeleteIdentity(ctx, identityID, at) })
}

func (s *InMemoryStore) UpsertMapping(ctx context.Context, mapping *models.IdentityMapping) (*models.IdentityMapping, error) {
	var stored *models.IdentityMapping
	err := s.mutate(ctx, func(tx *memTx) error {
		var err error
		stored, err = tx.UpsertMapping(ctx, mapping)
		return err
	})
	return stored, err
}

func (s *InMemoryStore) ReassignMappings(ctx context.Context, mappingIDs []id.MappingID, identityID id.IdentityID, at time.Time) error {
	return s.mutate(ctx, func(tx *memTx) error { return tx.ReassignMappings(ctx, mappingIDs, identityID, at) })
}

func (s *InMemoryStore) DeleteMappings(ctx context.Context, mappingIDs []id.MappingID) error {
	return s.mutate(ctx, func(tx *memTx) error { return tx.DeleteMappings(ctx, mappingIDs) })
}

func (s *InMemoryStore) FindIdentity(ctx context.Context, identityID id.IdentityID) (identity *models.MasterIdentity, err error) {
	s.view(func(tx *memTx) { identity, err = tx.FindIdentity(ctx, identityID) })
	return identity, err
}

func (s *InMemoryStore) ListIdentities(ctx context.Context, kind id.EntityKind) (identities []*models.MasterIdentity, err error) {
	s.view(func(tx *memTx) { identities, err = tx.ListIdentities(ctx, kind) })
	return identities, err
}

func (s *InMemoryStore) FindMapping(ctx context.Context, mappingID id.MappingID) (mapping *models.IdentityMapping, err error) {
	s.view(func(tx *memTx) { mapping, err = tx.FindMapping(ctx, mappingID) })
	return mapping, err
}

func (s *InMemoryStore) FindMappingByRecord(ctx context.Context, key models.RecordKey) (mapping *models.IdentityMapping, err error) {
	s.view(func(tx *memTx) { mapping, err = tx.FindMappingByRecord(ctx, key) })
	return mapping, err
}

func (s *InMemoryStore) ListMappings(ctx context.Context, identityID id.IdentityID) (mappings []*models.IdentityMapping, err error) {
	s.view(func(tx *memTx) { mappings, err = tx.ListMappings(ctx, identityID) })
	return mappings, err
}

func (s *InMemoryStore) ListMappingsByExternalID(ctx context.Context, kind id.EntityKind, externalID string) (mappings []*models.IdentityMapping, err error) {
	s.view(func(tx *memTx) { mappings, err = tx.ListMappingsByExternalID(ctx, kind, externalID) })
	return mappings, err
}

func (s *InMemoryStore) LatestSeason(ctx context.Context, identityID id.IdentityID) (season int, err error) {
	s.view(func(tx *memTx) { season, err = tx.LatestSeason(ctx, identityID) })
	return season, err
}

// memTx reads through its overlay to the committed graph. Views have no
// overlay and never write.
type memTx struct {
	g  *graph
	ov *overlay
}

func (t *memTx) identity(identityID id.IdentityID) (*models.MasterIdentity, bool) {
	if t.ov != nil {
		if identity, ok := t.ov.identities[identityID]; ok {
			return identity, true
		}
	}
	identity, ok := t.g.identities[identityID]
	return identity, ok
}

func (t *memTx) mapping(mappingID id.MappingID) (*models.IdentityMapping, bool) {
	if t.ov != nil {
		if m, ok := t.ov.mappings[mappingID]; ok {
			return m, m != nil
		}
	}
	m, ok := t.g.mappings[mappingID]
	return m, ok
}

func (t *memTx) mappingForRecord(key models.RecordKey) (id.MappingID, bool) {
	if t.ov != nil {
		if mappingID, ok := t.ov.byRecord[key]; ok {
			return mappingID, !mappingID.IsNil()
		}
	}
	mappingID, ok := t.g.byRecord[key]
	return mappingID, ok
}

func (t *memTx) putMapping(m *models.IdentityMapping) {
	t.ov.mappings[m.ID] = m
	t.ov.byRecord[m.Record] = m.ID
}

func (t *memTx) dropMapping(m *models.IdentityMapping) {
	t.ov.mappings[m.ID] = nil
	t.ov.byRecord[m.Record] = id.MappingID{}
}

func (t *memTx) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return fn(ctx, t)
}

func (t *memTx) CreateIdentity(_ context.Context, identity *models.MasterIdentity) error {
	if _, exists := t.identity(identity.ID); exists {
		return sentinel.ErrConflict
	}
	t.ov.identities[identity.ID] = identity.Clone()
	return nil
}

func (t *memTx) FindIdentity(_ context.Context, identityID id.IdentityID) (*models.MasterIdentity, error) {
	identity, ok := t.identity(identityID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return identity.Clone(), nil
}

func (t *memTx) UpdateIdentity(_ context.Context, identity *models.MasterIdentity) error {
	current, ok := t.identity(identity.ID)
	if !ok {
		return sentinel.ErrNotFound
	}
	if current.Version != identity.Version {
		return sentinel.ErrConflict
	}
	identity.Version++
	t.ov.identities[identity.ID] = identity.Clone()
	return nil
}

func (t *memTx) DeleteIdentity(_ context.Context, identityID id.IdentityID, at time.Time) error {
	current, ok := t.identity(identityID)
	if !ok {
		return sentinel.ErrNotFound
	}
	next := current.Clone()
	if err := next.MarkDeleted(at); err != nil {
		return sentinel.ErrInvalidState
	}
	next.Version++
	t.ov.identities[identityID] = next
	return nil
}

func (t *memTx) ListIdentities(_ context.Context, kind id.EntityKind) ([]*models.MasterIdentity, error) {
	out := make([]*models.MasterIdentity, 0)
	keep := func(identity *models.MasterIdentity) {
		if identity.Kind == kind && identity.IsActive() {
			out = append(out, identity.Clone())
		}
	}
	for identityID, identity := range t.g.identities {
		if t.ov != nil {
			if _, shadowed := t.ov.identities[identityID]; shadowed {
				continue
			}
		}
		keep(identity)
	}
	if t.ov != nil {
		for _, identity := range t.ov.identities {
			keep(identity)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (t *memTx) FindMapping(_ context.Context, mappingID id.MappingID) (*models.IdentityMapping, error) {
	m, ok := t.mapping(mappingID)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return m.Clone(), nil
}

func (t *memTx) FindMappingByRecord(ctx context.Context, key models.RecordKey) (*models.IdentityMapping, error) {
	mappingID, ok := t.mappingForRecord(key)
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return t.FindMapping(ctx, mappingID)
}

func (t *memTx) ListMappings(_ context.Context, identityID id.IdentityID) ([]*models.IdentityMapping, error) {
	return t.collect(t.g.byIdentity[identityID], func(m *models.IdentityMapping) bool {
		return m.IdentityID == identityID
	}), nil
}

func (t *memTx) ListMappingsByExternalID(_ context.Context, kind id.EntityKind, externalID string) ([]*models.IdentityMapping, error) {
	return t.collect(t.g.byExternal[externalKey{kind, externalID}], func(m *models.IdentityMapping) bool {
		return m.Record.Kind == kind && m.Record.ExternalID == externalID
	}), nil
}

// collect resolves the indexed committed ids plus every mapping the overlay
// touched, keeping the current rows that satisfy keep.
func (t *memTx) collect(indexed mappingSet, keep func(*models.IdentityMapping) bool) []*models.IdentityMapping {
	out := make([]*models.IdentityMapping, 0, len(indexed))
	visit := func(mappingID id.MappingID) {
		if m, ok := t.mapping(mappingID); ok && keep(m) {
			out = append(out, m.Clone())
		}
	}
	for mappingID := range indexed {
		if t.ov != nil {
			if _, touched := t.ov.mappings[mappingID]; touched {
				continue
			}
		}
		visit(mappingID)
	}
	if t.ov != nil {
		for mappingID := range t.ov.mappings {
			visit(mappingID)
		}
	}
	sortMappings(out)
	return out
}

func (t *memTx) UpsertMapping(_ context.Context, mapping *models.IdentityMapping) (*models.IdentityMapping, error) {
	if _, ok := t.identity(mapping.IdentityID); !ok {
		return nil, sentinel.ErrNotFound
	}
	if existingID, ok := t.mappingForRecord(mapping.Record); ok {
		existing, _ := t.mapping(existingID)
		next := existing.Clone()
		next.IdentityID = mapping.IdentityID
		next.DisplayName = mapping.DisplayName
		next.Confidence = mapping.Confidence
		next.Method = mapping.Method
		next.UpdatedAt = mapping.UpdatedAt
		t.putMapping(next)
		return next.Clone(), nil
	}
	if _, taken := t.mapping(mapping.ID); taken {
		return nil, sentinel.ErrConflict
	}
	stored := mapping.Clone()
	t.putMapping(stored)
	return stored.Clone(), nil
}

func (t *memTx) ReassignMappings(_ context.Context, mappingIDs []id.MappingID, identityID id.IdentityID, at time.Time) error {
	if _, ok := t.identity(identityID); !ok {
		return sentinel.ErrNotFound
	}
	moved := make([]*models.IdentityMapping, 0, len(mappingIDs))
	for _, mappingID := range mappingIDs {
		m, ok := t.mapping(mappingID)
		if !ok {
			return sentinel.ErrNotFound
		}
		next := m.Clone()
		next.IdentityID = identityID
		next.UpdatedAt = at
		moved = append(moved, next)
	}
	for _, m := range moved {
		t.putMapping(m)
	}
	return nil
}

func (t *memTx) DeleteMappings(_ context.Context, mappingIDs []id.MappingID) error {
	doomed := make([]*models.IdentityMapping, 0, len(mappingIDs))
	for _, mappingID := range mappingIDs {
		m, ok := t.mapping(mappingID)
		if !ok {
			return sentinel.ErrNotFound
		}
		doomed = append(doomed, m)
	}
	for _, m := range doomed {
		t.dropMapping(m)
	}
	return nil
}

func (t *memTx) LatestSeason(ctx context.Context, identityID id.IdentityID) (int, error) {
	mappings, err := t.ListMappings(ctx, identityID)
	if err != nil {
		return 0, err
	}
	latest := 0
	for _, m := range mappings {
		if m.Record.Season > latest {
			latest = m.Record.Season
		}
	}
	return latest, nil
}

// sortMappings orders mappings by season, then external id.
func sortMappings(ms []*models.IdentityMapping) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].Record.Season != ms[j].Record.Season {
			return ms[i].Record.Season < ms[j].Record.Season
		}
		return ms[i].Record.ExternalID < ms[j].Record.ExternalID
	})
}
