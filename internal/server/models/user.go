// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a stored credential together with its public profile fields.
// PasswordHash is never serialised to clients.
type User struct {
	ID           string
	UserName     string
	Email        string
	PasswordHash string
	Avatar       string
	CreatedAt    time.Time
}

// ProfileUpdate carries the fields a user may change about themselves.
// Empty Email or Avatar means "leave unchanged".
type ProfileUpdate struct {
	UserName string
	Email    string
	Avatar   string
}
