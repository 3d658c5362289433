package models

import "time"

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Password  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// GuestResponse carries a freshly generated guest identifier. Guests are
// local-only: the id never maps to an account and the server stores nothing
// for it until a sign-in merge pushes progress under an account id.
type GuestResponse struct {
	GuestID string `json:"guest_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
