package models

import "time"

// ConfirmationToken is a single-use code bound to a user, used for account
// confirmation and password reset.
type ConfirmationToken struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	Code      string    `gorm:"not null;index" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	CreatedAt time.Time `json:"-"`
	ExpiresAt time.Time `gorm:"not null;index" json:"-"`
}

func (t ConfirmationToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}
