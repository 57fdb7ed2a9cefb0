// Package config holds process configuration for the resolver and the admin server.
package config

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"strings"
	"time"

	"rosterid/internal/scoring"
	"rosterid/pkg/platform/retry"
)

// Config is the flat process configuration. Keys match the koanf tags and,
// upper-cased with the ROSTERID_ prefix, the environment variables.
type Config struct {
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	HTTPAddr   string `koanf:"http_addr"`
	AdminToken string `koanf:"admin_token"`

	// DatabaseURL selects the Postgres stores when set; otherwise in-memory.
	DatabaseURL string `koanf:"database_url"`
	// RedisURL selects the Redis review queue when set.
	RedisURL string `koanf:"redis_url"`
	// KafkaBrokers enables the outward audit event stream when set.
	KafkaBrokers []string `koanf:"kafka_brokers"`
	KafkaTopic   string   `koanf:"kafka_topic"`

	ResolverWorkers    int           `koanf:"resolver_workers"`
	PendingTTL         time.Duration `koanf:"pending_ttl"`
	AutoApplyThreshold float64       `koanf:"auto_apply_threshold"`

	WeightName      float64 `koanf:"weight_name"`
	WeightPosition  float64 `koanf:"weight_position"`
	WeightTeam      float64 `koanf:"weight_team"`
	WeightStats     float64 `koanf:"weight_stats"`
	WeightDraft     float64 `koanf:"weight_draft"`
	WeightOwnership float64 `koanf:"weight_ownership"`
	WeightSeasonal  float64 `koanf:"weight_seasonal"`

	ThresholdAutoHigh  float64 `koanf:"threshold_auto_high"`
	ThresholdAuto      float64 `koanf:"threshold_auto"`
	ThresholdReview    float64 `koanf:"threshold_review"`
	ThresholdReviewLow float64 `koanf:"threshold_review_low"`

	TeamContinuityThreshold float64 `koanf:"team_continuity_threshold"`
	TeamContinuityWindow    int     `koanf:"team_continuity_window"`
	TeamNameWeight          float64 `koanf:"team_name_weight"`
	TeamOwnerWeight         float64 `koanf:"team_owner_weight"`

	RetryMaxAttempts     int           `koanf:"retry_max_attempts"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`
}

// New returns the default configuration.
func New() *Config {
	policy := scoring.DefaultPolicy()
	rc := retry.DefaultConfig()
	return &Config{
		LogLevel:   "info",
		LogFormat:  "text",
		HTTPAddr:   ":8080",
		KafkaTopic: "rosterid.audit",

		ResolverWorkers:    runtime.NumCPU(),
		PendingTTL:         7 * 24 * time.Hour,
		AutoApplyThreshold: policy.Thresholds.AutoApprove,

		WeightName:      policy.Weights.Name,
		WeightPosition:  policy.Weights.Position,
		WeightTeam:      policy.Weights.Team,
		WeightStats:     policy.Weights.Stats,
		WeightDraft:     policy.Weights.Draft,
		WeightOwnership: policy.Weights.Ownership,
		WeightSeasonal:  policy.Weights.Seasonal,

		ThresholdAutoHigh:  policy.Thresholds.AutoApproveHigh,
		ThresholdAuto:      policy.Thresholds.AutoApprove,
		ThresholdReview:    policy.Thresholds.Review,
		ThresholdReviewLow: policy.Thresholds.ReviewLow,

		TeamContinuityThreshold: 0.7,
		TeamContinuityWindow:    2,
		TeamNameWeight:          0.3,
		TeamOwnerWeight:         0.7,

		RetryMaxAttempts:     rc.MaxAttempts,
		RetryInitialInterval: rc.InitialInterval,
		RetryMaxInterval:     rc.MaxInterval,
	}
}

// Policy builds the scoring policy from the weight and threshold keys.
func (c *Config) Policy() scoring.Policy {
	return scoring.Policy{
		Weights: scoring.Weights{
			Name:      c.WeightName,
			Position:  c.WeightPosition,
			Team:      c.WeightTeam,
			Stats:     c.WeightStats,
			Draft:     c.WeightDraft,
			Ownership: c.WeightOwnership,
			Seasonal:  c.WeightSeasonal,
		},
		Thresholds: scoring.Thresholds{
			AutoApproveHigh: c.ThresholdAutoHigh,
			AutoApprove:     c.ThresholdAuto,
			Review:          c.ThresholdReview,
			ReviewLow:       c.ThresholdReviewLow,
		},
	}
}

// Retry builds the conflict retry configuration.
func (c *Config) Retry() retry.Config {
	rc := retry.DefaultConfig()
	rc.MaxAttempts = c.RetryMaxAttempts
	rc.InitialInterval = c.RetryInitialInterval
	rc.MaxInterval = c.RetryMaxInterval
	return rc
}

// Validate rejects configurations the resolver cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTPAddr) == "" {
		errs = append(errs, errors.New("http_addr must not be empty"))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if c.ResolverWorkers <= 0 {
		errs = append(errs, errors.New("resolver_workers must be positive"))
	}
	if c.PendingTTL <= 0 {
		errs = append(errs, errors.New("pending_ttl must be positive"))
	}
	if c.RetryMaxAttempts <= 0 {
		errs = append(errs, errors.New("retry_max_attempts must be positive"))
	}
	for name, v := range map[string]float64{
		"auto_apply_threshold":      c.AutoApplyThreshold,
		"team_continuity_threshold": c.TeamContinuityThreshold,
		"team_name_weight":          c.TeamNameWeight,
		"team_owner_weight":         c.TeamOwnerWeight,
	} {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be within [0,1]", name))
		}
	}
	if math.Abs(c.TeamNameWeight+c.TeamOwnerWeight-1) > 1e-9 {
		errs = append(errs, errors.New("team_name_weight and team_owner_weight must sum to 1"))
	}
	if c.TeamContinuityWindow <= 0 {
		errs = append(errs, errors.New("team_continuity_window must be positive"))
	}
	if err := c.Policy().Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
