package service

import (
	"context"
	"testing"

	"referral_giveaway_bot/internal/model"
	"referral_giveaway_bot/internal/repository"
	"referral_giveaway_bot/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestReferralService_Register(t *testing.T) {
	tests := []struct {
		name        string
		telegramID  int64
		refArg      string
		setupMocks  func(mockRepo *mocks.MockLedgerRepository)
		expectedErr bool
		checkMocks  func(t *testing.T, mockRepo *mocks.MockLedgerRepository)
	}{
		{
			name:       "new user without referrer",
			telegramID: 100,
			refArg:     "",
			setupMocks: func(mockRepo *mocks.MockLedgerRepository) {
				mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.TelegramID == 100 &&
						u.InvitedBy == nil &&
						u.Status == model.StatusPending
				})).Return(true, nil)
			},
			checkMocks: func(t *testing.T, mockRepo *mocks.MockLedgerRepository) {
				mockRepo.AssertNotCalled(t, "AddReferral", mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name:       "new user with referrer records edge",
			telegramID: 101,
			refArg:     "100",
			setupMocks: func(mockRepo *mocks.MockLedgerRepository) {
				mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.TelegramID == 101 &&
						u.InvitedBy != nil && *u.InvitedBy == 100
				})).Return(true, nil)

				mockRepo.On("AddReferral", mock.Anything, int64(100), int64(101)).
					Return(nil)
			},
		},
		{
			name:       "repeated registration is a no-op",
			telegramID: 101,
			refArg:     "200",
			setupMocks: func(mockRepo *mocks.MockLedgerRepository) {
				mockRepo.On("CreateUser", mock.Anything, mock.Anything).
					Return(false, nil)
			},
			checkMocks: func(t *testing.T, mockRepo *mocks.MockLedgerRepository) {
				mockRepo.AssertNotCalled(t, "AddReferral", mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name:       "self referral dropped silently",
			telegramID: 100,
			refArg:     "100",
			setupMocks: func(mockRepo *mocks.MockLedgerRepository) {
				mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.TelegramID == 100 && u.InvitedBy == nil
				})).Return(true, nil)
			},
			checkMocks: func(t *testing.T, mockRepo *mocks.MockLedgerRepository) {
				mockRepo.AssertNotCalled(t, "AddReferral", mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name:       "malformed referrer dropped silently",
			telegramID: 100,
			refArg:     "not-a-number",
			setupMocks: func(mockRepo *mocks.MockLedgerRepository) {
				mockRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.InvitedBy == nil
				})).Return(true, nil)
			},
			checkMocks: func(t *testing.T, mockRepo *mocks.MockLedgerRepository) {
				mockRepo.AssertNotCalled(t, "AddReferral", mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name:       "duplicate edge swallowed",
			telegramID: 101,
			refArg:     "100",
			setupMocks: func(mockRepo *mocks.MockLedgerRepository) {
				mockRepo.On("CreateUser", mock.Anything, mock.Anything).
					Return(true, nil)
				mockRepo.On("AddReferral", mock.Anything, int64(100), int64(101)).
					Return(repository.ErrDuplicateReferral)
			},
		},
		{
			name:       "store failure surfaces",
			telegramID: 100,
			refArg:     "",
			setupMocks: func(mockRepo *mocks.MockLedgerRepository) {
				mockRepo.On("CreateUser", mock.Anything, mock.Anything).
					Return(false, assert.AnError)
			},
			expectedErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockLedgerRepository{}
			tt.setupMocks(mockRepo)

			service := NewReferralService(mockRepo, "giveaway_bot")
			link, err := service.Register(context.Background(), tt.telegramID, tt.refArg)

			if tt.expectedErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, link)
				assert.Equal(t, tt.telegramID, link.TelegramID)
				assert.Contains(t, link.URL(), "t.me/giveaway_bot?start=")
			}

			if tt.checkMocks != nil {
				tt.checkMocks(t, mockRepo)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestReferralService_RegisterNotifiesReferrer(t *testing.T) {
	mockRepo := &mocks.MockLedgerRepository{}
	mockRepo.On("CreateUser", mock.Anything, mock.Anything).Return(true, nil)
	mockRepo.On("AddReferral", mock.Anything, int64(100), int64(101)).Return(nil)
	mockRepo.On("CountReferrals", mock.Anything, int64(100)).Return(3, nil)

	notifier := &captureNotifier{}
	service := NewReferralService(mockRepo, "giveaway_bot")
	service.SetNotifier(notifier)

	_, err := service.Register(context.Background(), 101, "100")
	assert.NoError(t, err)
	assert.Equal(t, int64(100), notifier.telegramID)
	assert.Equal(t, 3, notifier.referrals)

	mockRepo.AssertExpectations(t)
}

type captureNotifier struct {
	telegramID int64
	referrals  int
}

func (c *captureNotifier) ReferralCountChanged(telegramID int64, referrals int) {
	c.telegramID = telegramID
	c.referrals = referrals
}

func TestReferralService_Progress(t *testing.T) {
	tests := []struct {
		name       string
		telegramID int64
		setupMocks func(mockRepo *mocks.MockLedgerRepository)
		expected   *model.Progress
		wantErr    bool
	}{
		{
			name:       "pending user with referrals",
			telegramID: 100,
			setupMocks: func(mockRepo *mocks.MockLedgerRepository) {
				mockRepo.On("CountReferrals", mock.Anything, int64(100)).Return(4, nil)
				mockRepo.On("GetUserStatus", mock.Anything, int64(100)).
					Return(model.StatusPending, nil)
			},
			expected: &model.Progress{TelegramID: 100, Referrals: 4, Status: model.StatusPending},
		},
		{
			name:       "never registered reports unknown status",
			telegramID: 999,
			setupMocks: func(mockRepo *mocks.MockLedgerRepository) {
				mockRepo.On("CountReferrals", mock.Anything, int64(999)).Return(0, nil)
				mockRepo.On("GetUserStatus", mock.Anything, int64(999)).
					Return(model.UserStatus(""), repository.ErrNotFound)
			},
			expected: &model.Progress{TelegramID: 999, Referrals: 0, Status: model.StatusUnknown},
		},
		{
			name:       "store failure surfaces",
			telegramID: 100,
			setupMocks: func(mockRepo *mocks.MockLedgerRepository) {
				mockRepo.On("CountReferrals", mock.Anything, int64(100)).
					Return(0, assert.AnError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockLedgerRepository{}
			tt.setupMocks(mockRepo)

			service := NewReferralService(mockRepo, "giveaway_bot")
			progress, err := service.Progress(context.Background(), tt.telegramID)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expected, progress)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestReferralService_Candidates(t *testing.T) {
	t.Run("rejects non-positive threshold", func(t *testing.T) {
		mockRepo := &mocks.MockLedgerRepository{}
		service := NewReferralService(mockRepo, "giveaway_bot")

		_, err := service.Candidates(context.Background(), 0)
		assert.ErrorIs(t, err, ErrInvalidThreshold)
		mockRepo.AssertNotCalled(t, "ListEligible", mock.Anything, mock.Anything)
	})

	t.Run("delegates to the ledger", func(t *testing.T) {
		expected := []model.Candidate{
			{TelegramID: 100, Referrals: 4},
			{TelegramID: 200, Referrals: 7},
		}

		mockRepo := &mocks.MockLedgerRepository{}
		mockRepo.On("ListEligible", mock.Anything, 4).Return(expected, nil)

		service := NewReferralService(mockRepo, "giveaway_bot")
		candidates, err := service.Candidates(context.Background(), 4)

		assert.NoError(t, err)
		assert.Equal(t, expected, candidates)
		mockRepo.AssertExpectations(t)
	})
}

func TestReferralService_Approve(t *testing.T) {
	tests := []struct {
		name          string
		repoErr       error
		expectedNewly bool
		expectedErr   error
		wantErr       bool
	}{
		{
			name:          "pending user is promoted",
			repoErr:       nil,
			expectedNewly: true,
		},
		{
			name:          "re-approval is an idempotent no-op",
			repoErr:       repository.ErrAlreadyApproved,
			expectedNewly: false,
		},
		{
			name:        "unregistered user surfaces not found",
			repoErr:     repository.ErrNotFound,
			expectedErr: ErrUserNotFound,
			wantErr:     true,
		},
		{
			name:    "store failure surfaces",
			repoErr: assert.AnError,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mocks.MockLedgerRepository{}
			mockRepo.On("ApproveUser", mock.Anything, int64(100)).Return(tt.repoErr)

			service := NewReferralService(mockRepo, "giveaway_bot")
			newly, err := service.Approve(context.Background(), 100)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.expectedNewly, newly)
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestReferralService_Winners(t *testing.T) {
	mockRepo := &mocks.MockLedgerRepository{}
	mockRepo.On("ListWinners", mock.Anything).Return([]int64{100, 200}, nil)

	service := NewReferralService(mockRepo, "giveaway_bot")
	winners, err := service.Winners(context.Background())

	assert.NoError(t, err)
	assert.Equal(t, []int64{100, 200}, winners)
	mockRepo.AssertExpectations(t)
}

func TestParseReferrer(t *testing.T) {
	tests := []struct {
		name       string
		refArg     string
		telegramID int64
		expected   *int64
	}{
		{name: "absent", refArg: "", telegramID: 100},
		{name: "whitespace only", refArg: "   ", telegramID: 100},
		{name: "malformed", refArg: "abc", telegramID: 100},
		{name: "negative", refArg: "-5", telegramID: 100},
		{name: "zero", refArg: "0", telegramID: 100},
		{name: "self reference", refArg: "100", telegramID: 100},
		{name: "valid", refArg: "200", telegramID: 100, expected: ptrInt64(200)},
		{name: "valid with whitespace", refArg: " 200 ", telegramID: 100, expected: ptrInt64(200)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseReferrer(tt.refArg, tt.telegramID))
		})
	}
}

func ptrInt64(v int64) *int64 { return &v }
