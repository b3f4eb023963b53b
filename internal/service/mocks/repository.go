package mocks

import (
	"context"

	"referral_giveaway_bot/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) CreateUser(ctx context.Context, u *model.User) (bool, error) {
	args := m.Called(ctx, u)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) AddReferral(ctx context.Context, referrerID, referredID int64) error {
	args := m.Called(ctx, referrerID, referredID)
	return args.Error(0)
}

func (m *MockLedgerRepository) CountReferrals(ctx context.Context, referrerID int64) (int, error) {
	args := m.Called(ctx, referrerID)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerRepository) GetUserStatus(ctx context.Context, telegramID int64) (model.UserStatus, error) {
	args := m.Called(ctx, telegramID)
	return args.Get(0).(model.UserStatus), args.Error(1)
}

func (m *MockLedgerRepository) ListEligible(ctx context.Context, minReferrals int) ([]model.Candidate, error) {
	args := m.Called(ctx, minReferrals)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Candidate), args.Error(1)
}

func (m *MockLedgerRepository) ApproveUser(ctx context.Context, telegramID int64) error {
	args := m.Called(ctx, telegramID)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListWinners(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}
