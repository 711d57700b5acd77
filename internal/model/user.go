package model

import "time"

// User represents an application user record as stored in the
// `users` table.  PasswordHash holds the bcrypt digest and is never
// serialised; handlers render users through Public().
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Username     – unique display name.
//	Email        – unique, lower-cased email address.
//	PasswordHash – bcrypt hashed password.
//	CreatedAt    – timestamp of creation.
type User struct {
	ID           uint64    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// PublicUser is the shape of a user in API responses.
type PublicUser struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public strips everything but the identifying fields.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email}
}
