// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account. Username is the primary key; it is never
// changed or deleted by any exposed operation.
//
// PasswordHash holds a bcrypt hash and is never serialised. The `json:"-"` tag
// keeps it out of every response even if a handler encodes a whole User.
type User struct {
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the public subset of a User returned by /login and /me.
type Profile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile returns the public view of u.
func (u *User) Profile() Profile {
	return Profile{Username: u.Username, Email: u.Email}
}
