package models

import "time"

type UserRole string

const (
	UserRoleEmployee UserRole = "Employee"
	UserRoleAdmin    UserRole = "Admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Role         UserRole
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is the single active authenticated identity consulted on every
// navigation. UserRecord holds the serialized {type, email} value; a row
// whose record fails to parse is treated the same as no session.
type Session struct {
	ID         string
	UserID     string
	UserRecord string
	IPAddress  string
	UserAgent  string
	CreatedAt  time.Time
	LastSeenAt time.Time
	ExpiresAt  time.Time
}

// UserRecord is the wire form of the session's user value.
type UserRecord struct {
	Type  UserRole `json:"type"`
	Email string   `json:"email"`
}
