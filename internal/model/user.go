package model

import "time"

// Role controls what a user may do beyond their own tasks.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a registered account.
type User struct {
	// ID is the unique identifier for this user.
	ID string `json:"id" db:"id"`

	// FullName is the user's display name.
	FullName string `json:"full_name" db:"full_name"`

	// Username is the unique login handle.
	Username string `json:"username" db:"username"`

	// Email is the unique contact address, stored lowercased.
	Email string `json:"email" db:"email"`

	// PasswordHash is the bcrypt hash of the password. Never serialized.
	PasswordHash string `json:"-" db:"password_hash"`

	// Role is either RoleUser or RoleAdmin.
	Role Role `json:"role" db:"role"`

	// CreatedAt is when the account was registered.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// UserSummary is the public slice of a user embedded in task and search
// responses. It never carries the password hash.
type UserSummary struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Summary returns the public view of the user.
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		FullName: u.FullName,
		Username: u.Username,
		Email:    u.Email,
	}
}
