package model

import "time"

// Admin represents an account that manages projects and invites
type Admin struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Credentials is the login body
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the register body sent to the backend
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// AuthResponse is returned by login and register
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Admin       Admin  `json:"admin"`
}

// Session is a read-only snapshot of the current admin session
type Session struct {
	Admin         *Admin
	Token         string
	Authenticated bool
}
