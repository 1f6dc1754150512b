package model

import "time"

// User links a Telegram account to a backend account.
type User struct {
	ID              uint  `gorm:"primaryKey"`
	TelegramID      int64 `gorm:"uniqueIndex"`
	FirstName       string
	LastName        string
	Username        string
	BackendUsername string
	AccessToken     string
	RefreshToken    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Linked reports whether the user has backend credentials.
func (u User) Linked() bool {
	return u.AccessToken != ""
}
