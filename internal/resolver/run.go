package resolver

import (
	"context"
	"maps"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"rosterid/internal/identity/models"
	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
	"rosterid/pkg/requestcontext"
)

// Options scope one run.
type Options struct {
	Kind id.EntityKind
	// Seasons restricts the run to these seasons. Empty means every season.
	Seasons []int
}

// RunContext is the state of one resolution run. It is created by Run and
// passed through every stage; nothing about a run outlives it.
type RunContext struct {
	ID        string
	Kind      id.EntityKind
	StartedAt time.Time
	seasons   map[int]bool
	began     time.Time

	recordsRead       atomic.Int64
	recordsInvalid    atomic.Int64
	recordsFiltered   atomic.Int64
	blocks            atomic.Int64
	pairsCompared     atomic.Int64
	autoApplied       atomic.Int64
	queued            atomic.Int64
	skipped           atomic.Int64
	conflicts         atomic.Int64
	continuityMatched atomic.Int64
	identitiesCreated atomic.Int64
	pairErrors        atomic.Int64

	alreadyLinked     atomic.Int64

	// assigned is written by the team continuity pass before pairs are
	// scored and only read afterwards.
	assigned map[models.RecordKey]id.IdentityID

	mu     sync.Mutex
	errors map[string]int
}

func newRunContext(ctx context.Context, opts Options) *RunContext {
	runID := requestcontext.RunID(ctx)
	if runID == "" {
		runID = uuid.NewString()
	}
	rc := &RunContext{
		ID:        runID,
		Kind:      opts.Kind,
		StartedAt: requestcontext.Now(ctx),
		began:     time.Now(),
		assigned:  make(map[models.RecordKey]id.IdentityID),
		errors:    make(map[string]int),
	}
	if len(opts.Seasons) > 0 {
		rc.seasons = make(map[int]bool, len(opts.Seasons))
		for _, s := range opts.Seasons {
			rc.seasons[s] = true
		}
	}
	return rc
}

// includes reports whether r belongs to this run.
func (rc *RunContext) includes(r models.RawRecord) bool {
	if r.Kind != rc.Kind {
		return false
	}
	return rc.seasons == nil || rc.seasons[r.Season]
}

// fail counts a failure that was isolated to one pair or record.
func (rc *RunContext) fail(err error) string {
	code := string(dErrors.CodeOf(err))
	if code == "" {
		code = string(dErrors.CodeInternal)
	}
	rc.pairErrors.Add(1)
	rc.mu.Lock()
	rc.errors[code]++
	rc.mu.Unlock()
	return code
}

// Report summarizes a finished run.
type Report struct {
	RunID             string         `json:"run_id"`
	Kind              id.EntityKind  `json:"kind"`
	Seasons           []int          `json:"seasons,omitempty"`
	StartedAt         time.Time      `json:"started_at"`
	Duration          time.Duration  `json:"duration"`
	RecordsRead       int64          `json:"records_read"`
	RecordsInvalid    int64          `json:"records_invalid"`
	RecordsFiltered   int64          `json:"records_filtered"`
	Blocks            int64          `json:"blocks"`
	PairsCompared     int64          `json:"pairs_compared"`
	AutoApplied       int64          `json:"auto_applied"`
	Queued            int64          `json:"queued"`
	Skipped           int64          `json:"skipped"`
	AlreadyLinked     int64          `json:"already_linked"`
	Conflicts         int64          `json:"conflicts"`
	ContinuityMatched int64          `json:"continuity_matched"`
	IdentitiesCreated int64          `json:"identities_created"`
	PairErrors        int64          `json:"pair_errors"`
	Errors            map[string]int `json:"errors,omitempty"`
}

func (rc *RunContext) report() *Report {
	rc.mu.Lock()
	errs := maps.Clone(rc.errors)
	rc.mu.Unlock()

	var seasons []int
	if rc.seasons != nil {
		seasons = slices.Sorted(maps.Keys(rc.seasons))
	}
	return &Report{
		RunID:             rc.ID,
		Kind:              rc.Kind,
		Seasons:           seasons,
		StartedAt:         rc.StartedAt,
		Duration:          time.Since(rc.began),
		RecordsRead:       rc.recordsRead.Load(),
		RecordsInvalid:    rc.recordsInvalid.Load(),
		RecordsFiltered:   rc.recordsFiltered.Load(),
		Blocks:            rc.blocks.Load(),
		PairsCompared:     rc.pairsCompared.Load(),
		AutoApplied:       rc.autoApplied.Load(),
		Queued:            rc.queued.Load(),
		Skipped:           rc.skipped.Load(),
		AlreadyLinked:     rc.alreadyLinked.Load(),
		Conflicts:         rc.conflicts.Load(),
		ContinuityMatched: rc.continuityMatched.Load(),
		IdentitiesCreated: rc.identitiesCreated.Load(),
		PairErrors:        rc.pairErrors.Load(),
		Errors:            errs,
	}
}
