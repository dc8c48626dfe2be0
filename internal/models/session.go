package models

import "time"

type Session struct {
	ID         string    `gorm:"primaryKey;size:64"`
	UserID     uint      `gorm:"not null;index"`
	CreatedAt  time.Time `gorm:"not null"`
	ExpiresAt  time.Time `gorm:"not null;index"`
	LastSeenIP string    `gorm:"size:64"`
	UserAgent  string    `gorm:"size:255"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

func (session Session) Expired(now time.Time) bool {
	return !now.Before(session.ExpiresAt)
}
