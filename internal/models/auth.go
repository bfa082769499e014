package models

import "time"

// RegisterRequest represents a registration request body
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// LoginRequest represents a login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginEvent records a single authentication event for analytics
type LoginEvent struct {
	ID        int       `json:"id"`
	UserID    int       `json:"userId"`
	Action    string    `json:"action"` // "register" or "login"
	CreatedAt time.Time `json:"createdAt"`
}

// Session is the result of a successful register/login/refresh: a signed
// token pair plus the sanitized user it belongs to.
type Session struct {
	AccessToken  string
	RefreshToken string
	User         *User
}
