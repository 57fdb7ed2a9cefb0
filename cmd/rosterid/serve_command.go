package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"rosterid/internal/platform/httpserver"
	httptransport "rosterid/internal/transport/http"
	"rosterid/pkg/requestcontext"
)

const expiryActor = "expiry"

func newServeCommand(ctx *commandContext) *cobra.Command {
	var expireEvery time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the admin API and expire stale match candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			a, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.close()
			if cfg.AdminToken == "" {
				a.logger.Warn("admin_token not set; every /admin request will be rejected")
			}

			h, err := httptransport.New(a.identities, a.reviews, a.audits, httptransport.WithLogger(a.logger))
			if err != nil {
				return err
			}
			router := httptransport.NewRouter(h, httptransport.RouterConfig{
				AdminToken: cfg.AdminToken,
				Metrics:    a.registry.Handler(),
				Registerer: a.registry,
				Logger:     a.logger,
				Checks:     a.checks,
			})

			g, gctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				return httpserver.Run(gctx, httpserver.New(cfg.HTTPAddr, router), a.logger)
			})
			if expireEvery > 0 {
				g.Go(func() error {
					a.expireLoop(gctx, expireEvery)
					return nil
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().DurationVar(&expireEvery, "expire-every", time.Hour, "Interval between stale candidate sweeps, 0 disables")
	return cmd
}

// expireLoop sweeps expired candidates until ctx is done. A failed sweep is
// logged and retried on the next tick.
func (a *app) expireLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx := requestcontext.WithActor(ctx, expiryActor)
			if _, err := a.reviews.ExpireStale(sweepCtx); err != nil {
				a.logger.ErrorContext(ctx, "candidate expiry sweep failed", "error", err)
			}
		}
	}
}
