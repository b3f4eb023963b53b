package model

import (
	"time"

	"github.com/google/uuid"
)

type ReferralEdge struct {
	ReferrerID int64
	ReferredID int64
	CreatedAt  time.Time
}

type Winner struct {
	ID         uuid.UUID
	TelegramID int64
	SelectedAt time.Time
}
