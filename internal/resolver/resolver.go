// Package resolver turns a feed of season records into identity graph
// decisions: blocking, pairwise scoring, classification and apply.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"rosterid/internal/identity/models"
	identityservice "rosterid/internal/identity/service"
	"rosterid/internal/ingest"
	resolvermetrics "rosterid/internal/resolver/metrics"
	"rosterid/internal/scoring"
	id "rosterid/pkg/domain"
	dErrors "rosterid/pkg/domain-errors"
	"rosterid/pkg/requestcontext"
)

//go:generate mockgen -source=resolver.go -destination=mocks/mocks.go -package=mocks IdentityGraph,ReviewQueue

// IdentityGraph is the part of the identity service a run writes through.
type IdentityGraph interface {
	ApplyMatch(ctx context.Context, match identityservice.Match) (*identityservice.ApplyResult, error)
	EnsureIdentity(ctx context.Context, r models.RawRecord, reason string) (*identityservice.ApplyResult, error)
	Assign(ctx context.Context, identityID id.IdentityID, r models.RawRecord, confidence float64, method models.MatchMethod, reason string) (*models.IdentityMapping, error)
	ExtendOwnerHistory(ctx context.Context, identityID id.IdentityID, owner string, season int, reason string) (*models.MasterIdentity, error)
	LookupExternalID(ctx context.Context, kind id.EntityKind, externalID string) ([]*models.IdentityMapping, error)
	ListIdentities(ctx context.Context, kind id.EntityKind) ([]identityservice.IdentitySummary, error)
}

// ReviewQueue receives pairs that need a human decision.
type ReviewQueue interface {
	Enqueue(ctx context.Context, candidate *models.MatchCandidate) (bool, error)
}

// ContinuityConfig tunes the team continuity pass.
type ContinuityConfig struct {
	Threshold   float64
	Window      int
	NameWeight  float64
	OwnerWeight float64
}

// Config tunes a Resolver.
type Config struct {
	Workers int
	// PendingTTL bounds how long a queued candidate is retained.
	PendingTTL time.Duration
	// AutoApplyThreshold is the lowest confidence applied without review.
	AutoApplyThreshold float64
	Continuity         ContinuityConfig
}

func DefaultConfig() Config {
	return Config{
		Workers:            4,
		PendingTTL:         7 * 24 * time.Hour,
		AutoApplyThreshold: scoring.DefaultPolicy().Thresholds.AutoApprove,
		Continuity: ContinuityConfig{
			Threshold:   0.7,
			Window:      2,
			NameWeight:  0.3,
			OwnerWeight: 0.7,
		},
	}
}

// Resolver runs resolution batches. It holds no per-run state and may run
// several batches concurrently.
type Resolver struct {
	graph   IdentityGraph
	queue   ReviewQueue
	scorer  *scoring.Scorer
	cfg     Config
	logger  *slog.Logger
	metrics *resolvermetrics.Metrics
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithMetrics(m *resolvermetrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func WithConfig(cfg Config) Option {
	return func(r *Resolver) {
		r.cfg = cfg
	}
}

// New creates a Resolver scoring with policy.
func New(graph IdentityGraph, queue ReviewQueue, policy scoring.Policy, opts ...Option) (*Resolver, error) {
	if graph == nil {
		return nil, errors.New("identity graph is required")
	}
	if queue == nil {
		return nil, errors.New("review queue is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	r := &Resolver{
		graph:  graph,
		queue:  queue,
		scorer: scoring.New(policy),
		cfg:    DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cfg.Workers <= 0 {
		return nil, errors.New("workers must be positive")
	}
	if r.cfg.PendingTTL <= 0 {
		return nil, errors.New("pending TTL must be positive")
	}
	return r, nil
}

// Run drains feed and resolves the records of opts.Kind. Invalid records
// are skipped and counted; a failing pair is counted and skipped. Only a
// feed failure or cancellation ends the run early.
func (r *Resolver) Run(ctx context.Context, feed ingest.Feed, opts Options) (*Report, error) {
	if !opts.Kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "kind must be player or team")
	}
	rc := newRunContext(ctx, opts)
	ctx = requestcontext.WithRunID(ctx, rc.ID)
	ctx = requestcontext.WithTime(ctx, rc.StartedAt)
	variant := variantFor(opts.Kind)

	r.logger.InfoContext(ctx, "resolution run started", "run_id", rc.ID, "kind", string(rc.Kind))

	records, err := r.collect(ctx, rc, feed)
	if err != nil {
		return nil, err
	}

	if rc.Kind == id.KindTeam {
		if err := r.continuityPass(ctx, rc, records); err != nil {
			return nil, err
		}
	}

	pairs := r.pairs(rc, variant, records)
	decisions, err := r.score(ctx, rc, variant, pairs)
	if err != nil {
		return nil, err
	}
	if err := r.carryOut(ctx, rc, decisions); err != nil {
		return nil, err
	}

	report := rc.report()
	r.metrics.ObserveRun(string(rc.Kind), report.Duration)
	r.logger.InfoContext(ctx, "resolution run finished",
		"run_id", rc.ID,
		"kind", string(rc.Kind),
		"records", report.RecordsRead,
		"invalid", report.RecordsInvalid,
		"pairs", report.PairsCompared,
		"auto_applied", report.AutoApplied,
		"queued", report.Queued,
		"pair_errors", report.PairErrors,
	)
	return report, nil
}

// collect drains the feed, keeping the first valid record per key.
func (r *Resolver) collect(ctx context.Context, rc *RunContext, feed ingest.Feed) ([]models.RawRecord, error) {
	kind := string(rc.Kind)
	seen := make(map[models.RecordKey]bool)
	var records []models.RawRecord
	for {
		rec, err := feed.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil && !dErrors.HasCode(err, dErrors.CodeValidation) {
			r.logger.ErrorContext(ctx, "feed failed", "run_id", rc.ID, "error", err)
			return nil, fmt.Errorf("read feed: %w", err)
		}
		rc.recordsRead.Add(1)
		if err == nil {
			err = rec.Validate()
		}
		if err != nil {
			rc.recordsInvalid.Add(1)
			r.metrics.IncRecords(kind, "invalid")
			r.logger.WarnContext(ctx, "skipping invalid record", "run_id", rc.ID, "error", err)
			continue
		}
		if !rc.includes(rec) || seen[rec.Key()] {
			rc.recordsFiltered.Add(1)
			r.metrics.IncRecords(kind, "filtered")
			continue
		}
		seen[rec.Key()] = true
		records = append(records, rec)
		r.metrics.IncRecords(kind, "accepted")
	}
	return records, nil
}

type pair struct {
	a, b     models.RawRecord
	lockKeys []string
}

// pairs blocks records and returns every cross-season pair that shares a
// block, once each.
func (r *Resolver) pairs(rc *RunContext, variant Variant, records []models.RawRecord) []pair {
	blocks := make(map[string][]int)
	keysOf := make([][]string, len(records))
	for i, rec := range records {
		keysOf[i] = variant.BlockingKeys(rec)
		for _, k := range keysOf[i] {
			blocks[k] = append(blocks[k], i)
		}
	}
	rc.blocks.Store(int64(len(blocks)))

	blockNames := make([]string, 0, len(blocks))
	for k := range blocks {
		blockNames = append(blockNames, k)
	}
	sort.Strings(blockNames)

	seen := make(map[[2]int]bool)
	var out []pair
	for _, k := range blockNames {
		members := blocks[k]
		for x := 0; x < len(members); x++ {
			for y := x + 1; y < len(members); y++ {
				i, j := members[x], members[y]
				if records[i].Season == records[j].Season {
					continue
				}
				if i > j {
					i, j = j, i
				}
				if seen[[2]int{i, j}] {
					continue
				}
				seen[[2]int{i, j}] = true
				out = append(out, pair{
					a:        records[i],
					b:        records[j],
					lockKeys: unionKeys(keysOf[i], keysOf[j]),
				})
			}
		}
	}
	return out
}

func unionKeys(a, b []string) []string {
	out := append([]string(nil), a...)
	for _, k := range b {
		dup := false
		for _, existing := range out {
			if existing == k {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, k)
		}
	}
	return out
}

type decision struct {
	pair
	factors    scoring.Factors
	confidence float64
	action     scoring.Action
}

// score compares every pair on the worker pool. Scoring is pure, so only
// cancellation can fail it.
func (r *Resolver) score(ctx context.Context, rc *RunContext, variant Variant, pairs []pair) ([]decision, error) {
	decisions := make([]decision, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for i, p := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f := variant.Factors(p.a, p.b)
			confidence := r.scorer.Score(f)
			decisions[i] = decision{pair: p, factors: f, confidence: confidence, action: r.scorer.DetermineAction(confidence)}
			rc.pairsCompared.Add(1)
			r.metrics.IncPairsCompared(string(rc.Kind))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(decisions, func(i, j int) bool {
		if decisions[i].confidence != decisions[j].confidence {
			return decisions[i].confidence > decisions[j].confidence
		}
		return models.PairKey(decisions[i].a.Key(), decisions[i].b.Key()) <
			models.PairKey(decisions[j].a.Key(), decisions[j].b.Key())
	})
	return decisions, nil
}

// carryOut applies, queues or discards each decision. Decisions that share
// a record run in one worker, strongest first, so which identity a record
// joins does not depend on scheduling. Pair failures are tallied; only
// cancellation stops the pool.
func (r *Resolver) carryOut(ctx context.Context, rc *RunContext, decisions []decision) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Workers)
	for _, group := range components(decisions) {
		g.Go(func() error {
			for _, d := range group {
				if err := gctx.Err(); err != nil {
					return err
				}
				r.metrics.IncDecision(string(rc.Kind), d.action.String())
				err := r.decide(gctx, rc, d)
				if err == nil {
					continue
				}
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				code := rc.fail(err)
				r.metrics.IncPairError(code)
				r.logger.WarnContext(gctx, "pair decision failed",
					"run_id", rc.ID,
					"left", d.a.Key().String(),
					"right", d.b.Key().String(),
					"error", err,
				)
			}
			return nil
		})
	}
	return g.Wait()
}

// components partitions decisions into groups connected by a shared record.
// Each group keeps the input order; groups are ordered by their first member.
func components(decisions []decision) [][]decision {
	parent := make(map[models.RecordKey]models.RecordKey)
	var find func(k models.RecordKey) models.RecordKey
	find = func(k models.RecordKey) models.RecordKey {
		p, ok := parent[k]
		if !ok {
			parent[k] = k
			return k
		}
		if p == k {
			return k
		}
		root := find(p)
		parent[k] = root
		return root
	}
	for _, d := range decisions {
		if ra, rb := find(d.a.Key()), find(d.b.Key()); ra != rb {
			parent[ra] = rb
		}
	}

	index := make(map[models.RecordKey]int)
	var out [][]decision
	for _, d := range decisions {
		root := find(d.a.Key())
		i, ok := index[root]
		if !ok {
			i = len(out)
			index[root] = i
			out = append(out, nil)
		}
		out[i] = append(out[i], d)
	}
	return out
}

func (r *Resolver) decide(ctx context.Context, rc *RunContext, d decision) error {
	left, leftOK := rc.assigned[d.a.Key()]
	right, rightOK := rc.assigned[d.b.Key()]
	if leftOK && rightOK {
		return r.decideLinked(ctx, rc, d, left == right)
	}
	switch {
	case d.confidence >= r.cfg.AutoApplyThreshold:
		return r.apply(ctx, rc, d)
	case d.action.IsAuto() || d.action.IsReview():
		return r.enqueue(ctx, rc, d, nil)
	default:
		rc.skipped.Add(1)
		return nil
	}
}

// decideLinked handles a pair whose records were both placed by the
// continuity pass. Only disagreement is worth a reviewer's time.
func (r *Resolver) decideLinked(ctx context.Context, rc *RunContext, d decision, same bool) error {
	switch {
	case same:
		rc.alreadyLinked.Add(1)
		return nil
	case d.action.IsAuto() || d.action.IsReview():
		rc.conflicts.Add(1)
		return r.enqueue(ctx, rc, d, []string{"mapped to different identities"})
	default:
		rc.skipped.Add(1)
		return nil
	}
}

func (r *Resolver) apply(ctx context.Context, rc *RunContext, d decision) error {
	method := models.MethodFuzzy
	if d.a.ExternalID == d.b.ExternalID {
		method = models.MethodExact
	}
	start := time.Now()
	result, err := r.graph.ApplyMatch(ctx, identityservice.Match{
		Left:       d.a,
		Right:      d.b,
		Confidence: d.confidence,
		Method:     method,
		Reason:     fmt.Sprintf("auto-applied at %.3f (%s)", d.confidence, d.action),
		LockKeys:   d.lockKeys,
	})
	r.metrics.ObserveApply(time.Since(start))
	// Both records already belong to different identities; a merge is a
	// reviewer's call.
	if errors.Is(err, identityservice.ErrDistinctIdentities) {
		rc.conflicts.Add(1)
		return r.enqueue(ctx, rc, d, []string{"mapped to different identities"})
	}
	if err != nil {
		return err
	}
	rc.autoApplied.Add(1)
	if result.Created {
		rc.identitiesCreated.Add(1)
	}
	return nil
}

func (r *Resolver) enqueue(ctx context.Context, rc *RunContext, d decision, extra []string) error {
	explanation := r.scorer.Explain(d.factors, d.confidence)
	reasons := append(append(extra, explanation.Weaknesses...), explanation.Strengths...)
	candidate := models.NewMatchCandidate(d.a, d.b, d.factors, d.confidence, d.action, reasons,
		requestcontext.Now(ctx), r.cfg.PendingTTL)
	queued, err := r.queue.Enqueue(ctx, candidate)
	if err != nil {
		return err
	}
	if queued {
		rc.queued.Add(1)
	}
	return nil
}
