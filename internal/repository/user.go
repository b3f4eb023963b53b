package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"referral_giveaway_bot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type user struct {
	TelegramID int64  `db:"user_id"`
	InvitedBy  *int64 `db:"invited_by"`
	Status     string `db:"status"`
}

type candidate struct {
	TelegramID int64 `db:"user_id"`
	Referrals  int   `db:"referrals"`
}

// CreateUser inserts the user if absent and reports whether a row was
// created. A repeated registration is a no-op: the stored invited_by is
// never overwritten.
func (r *Repository) CreateUser(ctx context.Context, u *model.User) (bool, error) {
	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"user_id":    u.TelegramID,
			"invited_by": u.InvitedBy,
			"joined_at":  u.JoinedAt,
			"status":     u.Status,
		}).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build user insert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *Repository) GetUserStatus(ctx context.Context, telegramID int64) (model.UserStatus, error) {
	var u user

	query, args, err := squirrel.
		Select("user_id", "invited_by", "status").
		From("users").
		Where(squirrel.Eq{"user_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", err
	}

	err = r.db.GetContext(ctx, &u, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}

	return model.UserStatus(u.Status), nil
}

// ListEligible returns pending users whose referral count reached
// minReferrals, ordered by user id for deterministic admin output.
func (r *Repository) ListEligible(ctx context.Context, minReferrals int) ([]model.Candidate, error) {
	query, args, err := squirrel.
		Select("u.user_id", "COUNT(r.id) AS referrals").
		From("users u").
		LeftJoin("referrals r ON r.referrer_id = u.user_id").
		Where(squirrel.Eq{"u.status": model.StatusPending}).
		GroupBy("u.user_id").
		Having("COUNT(r.id) >= ?", minReferrals).
		OrderBy("u.user_id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build eligible users query: %w", err)
	}

	var rows []candidate
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible users: %w", err)
	}

	candidates := make([]model.Candidate, len(rows))
	for i, row := range rows {
		candidates[i] = model.Candidate{
			TelegramID: row.TelegramID,
			Referrals:  row.Referrals,
		}
	}

	return candidates, nil
}

func (r *Repository) getUserStatusWithTx(ctx context.Context, tx *sqlx.Tx, telegramID int64) (model.UserStatus, error) {
	var u user

	query, args, err := squirrel.
		Select("user_id", "invited_by", "status").
		From("users").
		Where(squirrel.Eq{"user_id": telegramID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return "", err
	}

	err = tx.GetContext(ctx, &u, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}

	return model.UserStatus(u.Status), nil
}
