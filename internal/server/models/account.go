// Package models defines the persisted entities of the identity service.
package models

import "time"

// SystemAccountID is the reserved root account id. Tokens carrying this
// account id are granted impersonation and configuration-update privilege.
const SystemAccountID = "1"

// Account is a tenant account owned by a single user.
type Account struct {
	AccountID    string
	Name         string
	OwnerID      string
	IsActive     bool
	Created      time.Time
	LastActivity time.Time
}
