package model

import (
	"fmt"
	"time"
)

type UserStatus string

const (
	StatusPending  UserStatus = "pending"
	StatusApproved UserStatus = "approved"

	// StatusUnknown is reported for users that never registered.
	// It is never stored.
	StatusUnknown UserStatus = "unknown"
)

type User struct {
	TelegramID int64
	InvitedBy  *int64
	JoinedAt   time.Time
	Status     UserStatus
}

type Progress struct {
	TelegramID int64
	Referrals  int
	Status     UserStatus
}

type Candidate struct {
	TelegramID int64
	Referrals  int
}

type ReferralLink struct {
	TelegramID  int64
	BotUsername string
}

func (l ReferralLink) URL() string {
	return fmt.Sprintf("https://t.me/%s?start=%d", l.BotUsername, l.TelegramID)
}
