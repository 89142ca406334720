package models

import "time"

// User represents a coaching account
type User struct {
	ID               string
	Email            string
	PasswordHash     string
	Name             string
	OAuthProvider    string
	OAuthSubject     string
	RemindersEnabled bool
	CreatedAt        time.Time
}

// Profile is the public projection of a user used by the admin view
type Profile struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile returns the profile projection of the user
func (u *User) Profile() Profile {
	return Profile{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// Session represents an authenticated session
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
