package telegram

import (
	"testing"

	"referral_giveaway_bot/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCandidateList(t *testing.T) {
	assert.Equal(t,
		"No users have reached the required number of invites yet.",
		candidateList(nil))

	got := candidateList([]model.Candidate{
		{TelegramID: 100, Referrals: 4},
		{TelegramID: 200, Referrals: 7},
	})
	assert.Contains(t, got, "• 100 — 4 invited")
	assert.Contains(t, got, "• 200 — 7 invited")
}

func TestWinnerList(t *testing.T) {
	assert.Equal(t, "No winners yet.", winnerList(nil))

	got := winnerList([]int64{100, 200})
	assert.Contains(t, got, "• 100")
	assert.Contains(t, got, "• 200")
}

func TestProgressMessage(t *testing.T) {
	got := progressMessage(&model.Progress{
		TelegramID: 100,
		Referrals:  2,
		Status:     model.StatusPending,
	}, 4)

	assert.Contains(t, got, "invited 2 friend(s)")
	assert.Contains(t, got, "status: pending")
	assert.Contains(t, got, "at least 4 friends")
}

func TestWelcomeMessageCarriesLinkAndCount(t *testing.T) {
	got := welcomeMessage("https://t.me/giveaway_bot?start=100", 3, 4)

	assert.Contains(t, got, "https://t.me/giveaway_bot?start=100")
	assert.Contains(t, got, "so far: 3.")
}
