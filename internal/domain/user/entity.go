package user

import (
	"time"
)

// User represents the users table
type User struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Entries int64     `json:"entries"`
	Joined  time.Time `json:"joined"`
}

// Credential represents the login table. It is never serialized to clients.
type Credential struct {
	Email string
	Hash  string
}
