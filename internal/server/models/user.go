package models

import "time"

// User is a registered account. PasswordHash is a bcrypt digest and is never
// serialised.
type User struct {
	ID           string    `json:"-" bson:"_id"`
	Name         string    `json:"name" bson:"name"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash []byte    `json:"-" bson:"password_hash"`
	CreatedAt    time.Time `json:"-" bson:"created_at"`
}

// UserSummary is the public view of a user returned by register and login.
type UserSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary strips everything but the public fields.
func (u *User) Summary() *UserSummary {
	return &UserSummary{Name: u.Name, Email: u.Email}
}
