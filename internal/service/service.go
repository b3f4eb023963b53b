package service

import (
	"context"
	"errors"

	"referral_giveaway_bot/internal/model"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidThreshold = errors.New("threshold must be a positive integer")
)

type ReferralServiceI interface {
	Register(ctx context.Context, telegramID int64, refArg string) (*model.ReferralLink, error)
	Progress(ctx context.Context, telegramID int64) (*model.Progress, error)
	Candidates(ctx context.Context, threshold int) ([]model.Candidate, error)
	Approve(ctx context.Context, telegramID int64) (bool, error)
	Winners(ctx context.Context) ([]int64, error)
	Link(telegramID int64) model.ReferralLink
}

// LedgerRepository is the single ownership boundary over the durable
// user/referral/winner record sets. All operations are atomic with
// respect to each other; uniqueness of users and referral pairs is
// enforced by the store itself.
type LedgerRepository interface {
	CreateUser(ctx context.Context, u *model.User) (bool, error)
	AddReferral(ctx context.Context, referrerID, referredID int64) error
	CountReferrals(ctx context.Context, referrerID int64) (int, error)
	GetUserStatus(ctx context.Context, telegramID int64) (model.UserStatus, error)
	ListEligible(ctx context.Context, minReferrals int) ([]model.Candidate, error)
	ApproveUser(ctx context.Context, telegramID int64) error
	ListWinners(ctx context.Context) ([]int64, error)
}

// Notifier receives referral count changes for live progress feeds.
type Notifier interface {
	ReferralCountChanged(telegramID int64, referrals int)
}
