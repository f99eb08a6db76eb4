package domain

import "time"

// User is the identity record stored in Postgres. PasswordHash never leaves
// the domain and persistence layers.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLogin    *time.Time
}
