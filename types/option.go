package types

import (
	"context"

	"github.com/mcuadros/go-defaults"
)

func NewPlannerOptions() *PlannerOptions {
	opts := &PlannerOptions{Ctx: context.Background(), Metadata: Data{}}
	defaults.SetDefaults(opts)
	return opts
}

type PlannerOptions struct {
	/**
	 * Ctx is what Execute falls back to when called with a nil
	 * context, it reaches every run callback and store operation.
	 */
	Ctx context.Context
	/**
	 * default: 2
	 * the number of run callbacks allowed in flight at once.
	 * Execute fails fast when this is below 1.
	 */
	ConcurrencyLevel int `default:"2"`
	/**
	 * default: 0
	 * nodes on tiers below this one are marked Skipped at planning time
	 * and never handed to the executor.
	 */
	StartingTier int `default:"0"`
	/**
	 * default: false, persist the node table to the store after every
	 * finished tier so an operator can inspect a plan mid-flight.
	 */
	SaveState bool `default:"false"`

	/**
	 * PlanID keys the persisted plan state. Generated from the wall
	 * clock when left empty.
	 */
	PlanID string

	// Metadata travels with the plan and its persisted state.
	Metadata Data

	// PostgresConfig switches persistence from memory to PostgreSQL.
	PostgresConfig *PostgresConfig
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string // disable, require, verify-ca, verify-full
}

type PlannerOption func(*PlannerOptions)

func WithContext(ctx context.Context) PlannerOption {
	return func(opts *PlannerOptions) {
		opts.Ctx = ctx
	}
}

func SetConcurrencyLevel(concurrency int) PlannerOption {
	return func(opts *PlannerOptions) {
		opts.ConcurrencyLevel = concurrency
	}
}

func SetStartingTier(tier int) PlannerOption {
	return func(opts *PlannerOptions) {
		opts.StartingTier = tier
	}
}

func EnableSaveState() PlannerOption {
	return func(opts *PlannerOptions) {
		opts.SaveState = true
	}
}

func WithPlanID(planID string) PlannerOption {
	return func(opts *PlannerOptions) {
		opts.PlanID = planID
	}
}

func WithMetadata(metadata Data) PlannerOption {
	return func(opts *PlannerOptions) {
		opts.Metadata = metadata
	}
}

// WithPostgresConfig persists plan state to PostgreSQL instead of memory
func WithPostgresConfig(config *PostgresConfig) PlannerOption {
	return func(opts *PlannerOptions) {
		opts.PostgresConfig = config
	}
}
