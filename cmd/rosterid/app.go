package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	identitymetrics "rosterid/internal/identity/metrics"
	identityservice "rosterid/internal/identity/service"
	identitystore "rosterid/internal/identity/store"
	"rosterid/internal/platform/config"
	"rosterid/internal/platform/kafka"
	"rosterid/internal/platform/logger"
	"rosterid/internal/platform/metrics"
	"rosterid/internal/platform/postgres"
	"rosterid/internal/platform/redis"
	"rosterid/internal/resolver"
	resolvermetrics "rosterid/internal/resolver/metrics"
	reviewmetrics "rosterid/internal/review/metrics"
	reviewservice "rosterid/internal/review/service"
	reviewstore "rosterid/internal/review/store"
	httptransport "rosterid/internal/transport/http"
	audit "rosterid/pkg/platform/audit"
	"rosterid/pkg/platform/audit/events"
	"rosterid/pkg/platform/audit/publisher"
	auditmemory "rosterid/pkg/platform/audit/store/memory"
	auditpostgres "rosterid/pkg/platform/audit/store/postgres"
)

const (
	auditTopicPartitions  = 3
	auditTopicReplication = 1
)

// app holds the wired services for one process. Backends are chosen by
// config: Postgres when database_url is set, Redis for the review queue when
// redis_url is set, Kafka for the audit stream when kafka_brokers is set.
// Anything unset falls back to process memory.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *metrics.Registry

	checks map[string]httptransport.HealthCheck

	audits     audit.Store
	identities *identityservice.Service
	reviews    *reviewservice.Service

	closers []func()
}

func buildApp(ctx context.Context, cfg *config.Config) (a *app, err error) {
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	a = &app{cfg: cfg, logger: log, registry: metrics.New(), checks: map[string]httptransport.HealthCheck{}}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	graph, audits, err := a.openGraph(ctx)
	if err != nil {
		return nil, err
	}
	a.audits = audits

	candidates, err := a.openReviewStore(ctx)
	if err != nil {
		return nil, err
	}

	auditMetrics := audit.NewMetrics(a.registry)
	publisherOpts := []publisher.Option{
		publisher.WithLogger(log),
		publisher.WithMetrics(auditMetrics),
	}
	stream, err := a.openEventStream(ctx, auditMetrics)
	if err != nil {
		return nil, err
	}
	if stream != nil {
		publisherOpts = append(publisherOpts, publisher.WithEvents(stream))
	}
	recorder := publisher.New(audits, publisherOpts...)

	a.identities, err = identityservice.New(graph, audits,
		identityservice.WithLogger(log),
		identityservice.WithMetrics(identitymetrics.New(a.registry)),
		identityservice.WithAuditPublisher(recorder),
		identityservice.WithCandidateStore(candidates),
		identityservice.WithRetry(cfg.Retry()),
	)
	if err != nil {
		return nil, err
	}
	a.reviews, err = reviewservice.New(candidates, a.identities, recorder,
		reviewservice.WithLogger(log),
		reviewservice.WithMetrics(reviewmetrics.New(a.registry)),
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (a *app) openGraph(ctx context.Context) (identitystore.Store, audit.Store, error) {
	if a.cfg.DatabaseURL == "" {
		a.logger.Warn("database_url not set; identity graph and audit trail live in memory")
		return identitystore.NewInMemory(), auditmemory.NewInMemoryStore(), nil
	}
	db, err := postgres.Open(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	a.onClose(func() { _ = db.Close() })
	a.checks["postgres"] = db.PingContext
	return identitystore.NewPostgres(db), auditpostgres.New(db), nil
}

func (a *app) openReviewStore(ctx context.Context) (reviewstore.PendingMatchStore, error) {
	client, err := redis.New(ctx, a.cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return reviewstore.NewInMemory(), nil
	}
	a.onClose(func() { _ = client.Close() })
	a.checks["redis"] = client.Health
	return reviewstore.NewRedis(client.Client), nil
}

// openEventStream returns nil when no brokers are configured.
func (a *app) openEventStream(ctx context.Context, m *audit.Metrics) (*events.Async, error) {
	if len(a.cfg.KafkaBrokers) == 0 {
		return nil, nil
	}
	client, err := kafka.NewClient(a.cfg.KafkaBrokers, a.cfg.KafkaTopic)
	if err != nil {
		return nil, err
	}
	a.onClose(client.Close)
	if err := kafka.EnsureTopic(ctx, client, a.cfg.KafkaTopic, auditTopicPartitions, auditTopicReplication); err != nil {
		return nil, err
	}
	stream := events.NewAsync(kafka.NewSink(client, a.cfg.KafkaTopic),
		events.WithLogger(a.logger),
		events.WithMetrics(m),
	)
	// Registered after the client so it drains before the client closes.
	a.onClose(stream.Close)
	return stream, nil
}

func (a *app) resolver() (*resolver.Resolver, error) {
	rc := resolver.DefaultConfig()
	rc.Workers = a.cfg.ResolverWorkers
	rc.PendingTTL = a.cfg.PendingTTL
	rc.AutoApplyThreshold = a.cfg.AutoApplyThreshold
	rc.Continuity = resolver.ContinuityConfig{
		Threshold:   a.cfg.TeamContinuityThreshold,
		Window:      a.cfg.TeamContinuityWindow,
		NameWeight:  a.cfg.TeamNameWeight,
		OwnerWeight: a.cfg.TeamOwnerWeight,
	}
	return resolver.New(a.identities, a.reviews, a.cfg.Policy(),
		resolver.WithLogger(a.logger),
		resolver.WithMetrics(resolvermetrics.New(a.registry)),
		resolver.WithConfig(rc),
	)
}

func (a *app) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, errors.New("database_url is required")
	}
	return postgres.Open(ctx, cfg.DatabaseURL)
}
