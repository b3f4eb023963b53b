package telegram

import (
	"fmt"
	"strings"

	"referral_giveaway_bot/internal/model"
)

func subscribeMessage(channel string) string {
	return fmt.Sprintf(
		"Hi! To join the giveaway and get a shot at a personal song, subscribe to our channel: %s\n\n"+
			"Once subscribed, come back and hit /start again.", channel)
}

func welcomeMessage(link string, referrals, required int) string {
	return fmt.Sprintf(
		"Hi! 🎵\n\n"+
			"This is the \"1+%d = music\" giveaway bot.\n\n"+
			"1) Subscribe to our channel.\n"+
			"2) Invite %d friends with your personal link.\n"+
			"3) Your crew gets a shot at a personal song.\n\n"+
			"Your referral link:\n%s\n\n"+
			"Friends invited with your link so far: %d.",
		required, required, link, referrals)
}

func progressMessage(p *model.Progress, required int) string {
	return fmt.Sprintf(
		"You have invited %d friend(s).\n"+
			"Your status: %s.\n\n"+
			"Invite at least %d friends to enter the giveaway.",
		p.Referrals, p.Status, required)
}

func candidateList(candidates []model.Candidate) string {
	if len(candidates) == 0 {
		return "No users have reached the required number of invites yet."
	}

	lines := []string{"Users who reached the required number of invites:"}
	for _, c := range candidates {
		lines = append(lines, fmt.Sprintf("• %d — %d invited", c.TelegramID, c.Referrals))
	}
	return strings.Join(lines, "\n")
}

func winnerList(winners []int64) string {
	if len(winners) == 0 {
		return "No winners yet."
	}

	lines := []string{"Winners:"}
	for _, id := range winners {
		lines = append(lines, fmt.Sprintf("• %d", id))
	}
	return strings.Join(lines, "\n")
}

func helpMessage() string {
	return "Hi! I am the giveaway bot.\n\n" +
		"Commands:\n" +
		"/start — get your referral link\n" +
		"/my — see how many friends you have invited\n" +
		"\n" +
		"Admin commands:\n" +
		"/pending — users who reached the required invite count\n" +
		"/approve <user_id> — mark a user as a winner\n" +
		"/winners — winner list"
}
