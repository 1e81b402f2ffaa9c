package models

import "time"

// User is a registered identity. Password always holds a bcrypt hash, never
// plaintext. A non-empty ActivationCode marks the user as pending activation.
type User struct {
	UserID         string
	AccountID      string
	Email          string
	FriendlyName   string
	Password       string
	IsActive       bool
	ActivationCode string
	Created        time.Time
	LastActivity   time.Time
}
