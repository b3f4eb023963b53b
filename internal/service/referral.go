package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"referral_giveaway_bot/internal/model"
	"referral_giveaway_bot/internal/repository"
	"referral_giveaway_bot/pkg/logger"

	"go.uber.org/zap"
)

type ReferralService struct {
	repo        LedgerRepository
	botUsername string
	notifier    Notifier
}

func NewReferralService(repo LedgerRepository, botUsername string) *ReferralService {
	return &ReferralService{
		repo:        repo,
		botUsername: botUsername,
	}
}

// SetNotifier attaches a live progress feed. Optional; the service
// works without one.
func (s *ReferralService) SetNotifier(n Notifier) {
	s.notifier = n
}

// Register records the user if unseen and, for first registrations that
// carried a valid referrer, the referral edge. A malformed or
// self-referencing referrer argument is dropped silently: registration
// must always succeed for a well-formed user id.
func (s *ReferralService) Register(ctx context.Context, telegramID int64, refArg string) (*model.ReferralLink, error) {
	referrer := parseReferrer(refArg, telegramID)

	created, err := s.repo.CreateUser(ctx, &model.User{
		TelegramID: telegramID,
		InvitedBy:  referrer,
		JoinedAt:   time.Now().UTC(),
		Status:     model.StatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	if created && referrer != nil {
		err := s.repo.AddReferral(ctx, *referrer, telegramID)
		switch {
		case err == nil:
			s.notifyCountChanged(ctx, *referrer)
		case errors.Is(err, repository.ErrDuplicateReferral),
			errors.Is(err, repository.ErrSelfReferral):
			// no-op: the invitee's registration stands regardless
		default:
			return nil, fmt.Errorf("failed to record referral: %w", err)
		}
	}

	link := s.Link(telegramID)
	return &link, nil
}

func (s *ReferralService) Progress(ctx context.Context, telegramID int64) (*model.Progress, error) {
	count, err := s.repo.CountReferrals(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to count referrals: %w", err)
	}

	status, err := s.repo.GetUserStatus(ctx, telegramID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to get user status: %w", err)
		}
		status = model.StatusUnknown
	}

	return &model.Progress{
		TelegramID: telegramID,
		Referrals:  count,
		Status:     status,
	}, nil
}

func (s *ReferralService) Candidates(ctx context.Context, threshold int) ([]model.Candidate, error) {
	if threshold < 1 {
		return nil, ErrInvalidThreshold
	}

	candidates, err := s.repo.ListEligible(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible users: %w", err)
	}

	return candidates, nil
}

// Approve promotes a pending user and records the winner. The returned
// bool reports whether this call performed the promotion; approving an
// already-approved user is an idempotent success with no second winner
// record.
func (s *ReferralService) Approve(ctx context.Context, telegramID int64) (bool, error) {
	err := s.repo.ApproveUser(ctx, telegramID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrAlreadyApproved):
		return false, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, ErrUserNotFound
	default:
		return false, fmt.Errorf("failed to approve user: %w", err)
	}
}

func (s *ReferralService) Winners(ctx context.Context) ([]int64, error) {
	winners, err := s.repo.ListWinners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list winners: %w", err)
	}
	return winners, nil
}

func (s *ReferralService) Link(telegramID int64) model.ReferralLink {
	return model.ReferralLink{
		TelegramID:  telegramID,
		BotUsername: s.botUsername,
	}
}

func (s *ReferralService) notifyCountChanged(ctx context.Context, referrerID int64) {
	if s.notifier == nil {
		return
	}

	count, err := s.repo.CountReferrals(ctx, referrerID)
	if err != nil {
		logger.Logger().Warn("failed to count referrals for notification",
			zap.Int64("referrer_id", referrerID),
			zap.Error(err))
		return
	}

	s.notifier.ReferralCountChanged(referrerID, count)
}

// parseReferrer resolves the optional referrer argument once at the
// boundary: absent, malformed or self-referencing values all resolve
// to none.
func parseReferrer(refArg string, telegramID int64) *int64 {
	arg := strings.TrimSpace(refArg)
	if arg == "" {
		return nil
	}

	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 || id == telegramID {
		return nil
	}

	return &id
}
