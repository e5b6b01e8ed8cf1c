// Package models defines server-side rows that never leave the server.
package models

import "time"

type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Salt         []byte    `db:"salt"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

// ShareGrant is a stored share; only the token digest is persisted.
type ShareGrant struct {
	ID          string
	MomentID    string
	UserID      string
	TokenDigest string
	Recipients  []string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}
