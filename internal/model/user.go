package model

import "time"

// User is the stored identity record. The password hash never leaves the
// server; responses carry PublicUser instead.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	IsAdmin      bool      `json:"isAdmin"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt}
}

func (u User) Identity() Identity {
	return Identity{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

type PublicUser struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"isAdmin"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the resolved {id, username, isAdmin} tuple attached to an
// authenticated request. Pre-token cookie sessions carry id -1.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Username     *string
	PasswordHash *string
	IsAdmin      *bool
}

func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.PasswordHash == nil && u.IsAdmin == nil
}
