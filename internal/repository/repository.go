package repository

import (
	"context"
	"fmt"

	"referral_giveaway_bot/pkg/logger"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrSelfReferral      = errors.New("self referral")
	ErrDuplicateReferral = errors.New("referral already recorded")
	ErrAlreadyApproved   = errors.New("user already approved")
)

type Repository struct {
	db *sqlx.DB
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) Transaction(ctx context.Context, t func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	err = t(tx)
	if err != nil {
		txErr := tx.Rollback()
		if txErr != nil {
			return errors.Wrapf(err, "rollback error: %v", txErr)
		}
		return err
	}
	return tx.Commit()
}

type Config struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func New(cfg Config) (*Repository, error) {
	url := cfg.GetDatabaseURL()
	db, err := sqlx.Connect("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Logger().Info("Connected to database successfully")

	return &Repository{db: db}, nil
}

func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
	)
}

// Migrate creates the ledger tables. Uniqueness of users and of the
// (referrer, referred) pair is enforced here so that concurrent
// registrations cannot slip past application-level checks.
func (r *Repository) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			user_id BIGINT PRIMARY KEY,
			invited_by BIGINT,
			joined_at TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending'
		)`,
		`CREATE TABLE IF NOT EXISTS referrals (
			id BIGSERIAL PRIMARY KEY,
			referrer_id BIGINT NOT NULL,
			referred_id BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			CONSTRAINT referrals_no_self CHECK (referrer_id <> referred_id)
		)`,
		// the unordered pair is unique: a mutual invite must not be
		// credited in both directions
		`CREATE UNIQUE INDEX IF NOT EXISTS referrals_pair_unique
			ON referrals (LEAST(referrer_id, referred_id), GREATEST(referrer_id, referred_id))`,
		`CREATE TABLE IF NOT EXISTS winners (
			id UUID PRIMARY KEY,
			user_id BIGINT NOT NULL,
			selected_at TIMESTAMPTZ NOT NULL
		)`,
	}

	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("failed to apply schema: %w", err)
			}
		}
		return nil
	})
}
