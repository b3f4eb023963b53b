package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"referral_giveaway_bot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ApproveUser moves a pending user to approved and records the winner,
// in one transaction. Approving twice is detected and reported as
// ErrAlreadyApproved without touching the winners table.
func (r *Repository) ApproveUser(ctx context.Context, telegramID int64) error {
	return r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Update("users").
			Set("status", model.StatusApproved).
			Where(squirrel.Eq{
				"user_id": telegramID,
				"status":  model.StatusPending,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build status update query: %w", err)
		}

		result, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to update user status: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			_, err := r.getUserStatusWithTx(ctx, tx, telegramID)
			if errors.Is(err, ErrNotFound) {
				return ErrNotFound
			}
			if err != nil {
				return err
			}
			return ErrAlreadyApproved
		}

		return r.insertWinnerWithTx(ctx, tx, telegramID)
	})
}

func (r *Repository) insertWinnerWithTx(ctx context.Context, tx *sqlx.Tx, telegramID int64) error {
	winner := model.Winner{
		ID:         uuid.New(),
		TelegramID: telegramID,
		SelectedAt: time.Now().UTC(),
	}

	query, args, err := squirrel.
		Insert("winners").
		SetMap(map[string]interface{}{
			"id":          winner.ID,
			"user_id":     winner.TelegramID,
			"selected_at": winner.SelectedAt,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build winner insert query: %w", err)
	}

	_, err = tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert winner: %w", err)
	}

	return nil
}

func (r *Repository) ListWinners(ctx context.Context) ([]int64, error) {
	query, args, err := squirrel.
		Select("user_id").
		From("winners").
		OrderBy("selected_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var winners []int64
	err = r.db.SelectContext(ctx, &winners, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}

	return winners, nil
}
