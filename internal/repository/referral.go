package repository

import (
	"context"
	"fmt"
	"time"

	"referral_giveaway_bot/internal/model"

	"github.com/Masterminds/squirrel"
)

// AddReferral records that referrerID invited referredID. The unordered
// pair is unique in the store, so the reverse edge of an existing one
// counts as a repeat; either way the insert reports ErrDuplicateReferral
// and leaves the ledger untouched.
func (r *Repository) AddReferral(ctx context.Context, referrerID, referredID int64) error {
	if referrerID == referredID {
		return ErrSelfReferral
	}

	edge := model.ReferralEdge{
		ReferrerID: referrerID,
		ReferredID: referredID,
		CreatedAt:  time.Now().UTC(),
	}

	query, args, err := squirrel.
		Insert("referrals").
		SetMap(map[string]interface{}{
			"referrer_id": edge.ReferrerID,
			"referred_id": edge.ReferredID,
			"created_at":  edge.CreatedAt,
		}).
		Suffix("ON CONFLICT (LEAST(referrer_id, referred_id), GREATEST(referrer_id, referred_id)) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build referral insert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert referral: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrDuplicateReferral
	}

	return nil
}

func (r *Repository) CountReferrals(ctx context.Context, referrerID int64) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("referrals").
		Where(squirrel.Eq{"referrer_id": referrerID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count referrals: %w", err)
	}

	return count, nil
}
