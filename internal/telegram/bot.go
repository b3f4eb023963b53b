package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"referral_giveaway_bot/internal/service"
	"referral_giveaway_bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type Config struct {
	BotToken        string
	Channel         string
	AdminIDs        []int64
	RequiredInvites int
	MaxGifts        int
	Debug           bool
}

type Bot struct {
	api             *tgbotapi.BotAPI
	referrals       service.ReferralServiceI
	channel         string
	admins          map[int64]struct{}
	requiredInvites int
	maxGifts        int
}

func New(cfg Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}
	api.Debug = cfg.Debug

	admins := make(map[int64]struct{}, len(cfg.AdminIDs))
	for _, id := range cfg.AdminIDs {
		admins[id] = struct{}{}
	}

	return &Bot{
		api:             api,
		channel:         cfg.Channel,
		admins:          admins,
		requiredInvites: cfg.RequiredInvites,
		maxGifts:        cfg.MaxGifts,
	}, nil
}

// SetReferralService wires the engine in after the service has been
// built with the bot's username.
func (b *Bot) SetReferralService(s service.ReferralServiceI) {
	b.referrals = s
}

func (b *Bot) Username() string {
	return b.api.Self.UserName
}

func (b *Bot) Start(ctx context.Context) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := b.api.GetUpdatesChan(updateConfig)
	logger.Logger().Info("bot polling started", zap.String("username", b.Username()))

	for {
		select {
		case update := <-updates:
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)

		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		}
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	_, ok := b.admins[userID]
	return ok
}

// isSubscribed checks channel membership. If the check itself fails the
// user is treated as not subscribed.
func (b *Bot) isSubscribed(userID int64) bool {
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			SuperGroupUsername: b.channel,
			UserID:             userID,
		},
	})
	if err != nil {
		logger.Logger().Warn("failed to check channel subscription",
			zap.Int64("user_id", userID),
			zap.Error(err))
		return false
	}

	switch member.Status {
	case "member", "administrator", "creator":
		return true
	}
	return false
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(ctx, msg)
			return
		case "my":
			b.handleMy(ctx, msg)
			return
		case "pending":
			if b.isAdmin(msg.From.ID) {
				b.handlePending(ctx, msg)
				return
			}
		case "approve":
			if b.isAdmin(msg.From.ID) {
				b.handleApprove(ctx, msg)
				return
			}
		case "winners":
			if b.isAdmin(msg.From.ID) {
				b.handleWinners(ctx, msg)
				return
			}
		}
	}

	b.reply(msg.Chat.ID, helpMessage())
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	userID := msg.From.ID

	if !b.isSubscribed(userID) {
		b.reply(msg.Chat.ID, subscribeMessage(b.channel))
		return
	}

	link, err := b.referrals.Register(ctx, userID, msg.CommandArguments())
	if err != nil {
		logger.Logger().Error("failed to register user",
			zap.Int64("user_id", userID),
			zap.Error(err))
		b.reply(msg.Chat.ID, "Something went wrong, please try /start again in a moment.")
		return
	}

	count := 0
	if progress, err := b.referrals.Progress(ctx, userID); err == nil {
		count = progress.Referrals
	} else {
		logger.Logger().Warn("failed to get referral progress",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}

	b.reply(msg.Chat.ID, welcomeMessage(link.URL(), count, b.requiredInvites))
}

func (b *Bot) handleMy(ctx context.Context, msg *tgbotapi.Message) {
	progress, err := b.referrals.Progress(ctx, msg.From.ID)
	if err != nil {
		logger.Logger().Error("failed to get referral progress",
			zap.Int64("user_id", msg.From.ID),
			zap.Error(err))
		b.reply(msg.Chat.ID, "Something went wrong, please try again in a moment.")
		return
	}

	b.reply(msg.Chat.ID, progressMessage(progress, b.requiredInvites))
}

func (b *Bot) handlePending(ctx context.Context, msg *tgbotapi.Message) {
	candidates, err := b.referrals.Candidates(ctx, b.requiredInvites)
	if err != nil {
		logger.Logger().Error("failed to list candidates", zap.Error(err))
		b.reply(msg.Chat.ID, "Something went wrong, please try again in a moment.")
		return
	}

	b.reply(msg.Chat.ID, candidateList(candidates))
}

func (b *Bot) handleApprove(ctx context.Context, msg *tgbotapi.Message) {
	arg := strings.TrimSpace(msg.CommandArguments())
	if arg == "" {
		b.reply(msg.Chat.ID, "Usage: /approve <user_id>")
		return
	}

	targetID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		b.reply(msg.Chat.ID, "user_id must be a number.")
		return
	}

	newly, err := b.referrals.Approve(ctx, targetID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			b.reply(msg.Chat.ID, fmt.Sprintf("User %d has never registered.", targetID))
			return
		}
		logger.Logger().Error("failed to approve user",
			zap.Int64("user_id", targetID),
			zap.Error(err))
		b.reply(msg.Chat.ID, "Something went wrong, please try again in a moment.")
		return
	}

	if !newly {
		b.reply(msg.Chat.ID, fmt.Sprintf("User %d is already a winner.", targetID))
		return
	}

	reply := fmt.Sprintf("User %d marked as a winner.", targetID)
	if winners, err := b.referrals.Winners(ctx); err == nil && b.maxGifts > 0 && len(winners) >= b.maxGifts {
		reply += fmt.Sprintf("\nAll %d gifts are now allocated.", b.maxGifts)
	}
	b.reply(msg.Chat.ID, reply)

	// best effort: a failed congratulation must not undo the approval
	congrats := tgbotapi.NewMessage(targetID,
		"Congratulations! 🎉\nYou are one of the giveaway winners. We will contact you to arrange your personal song.")
	if _, err := b.api.Send(congrats); err != nil {
		logger.Logger().Warn("failed to notify winner",
			zap.Int64("user_id", targetID),
			zap.Error(err))
	}
}

func (b *Bot) handleWinners(ctx context.Context, msg *tgbotapi.Message) {
	winners, err := b.referrals.Winners(ctx)
	if err != nil {
		logger.Logger().Error("failed to list winners", zap.Error(err))
		b.reply(msg.Chat.ID, "Something went wrong, please try again in a moment.")
		return
	}

	b.reply(msg.Chat.ID, winnerList(winners))
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		logger.Logger().Warn("failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}
