package model

import (
	"time"
)

type NotificationKind string

const NotificationCelebration NotificationKind = "celebration"

// Notification is emitted by the engine for presentation collaborators.
type Notification struct {
	NotificationID string           `json:"notificationId"`
	Kind           NotificationKind `json:"kind"`
	Date           string           `json:"date"`
	Score          int              `json:"score"`
	Auto           bool             `json:"auto"`
	CreatedAt      time.Time        `json:"createdAt"`
}
