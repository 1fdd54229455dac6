package dto

import "time"

// LoginRequest represents login credentials, posted as a form or as JSON
type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

// SessionResponse describes the session created by a successful login
type SessionResponse struct {
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	RoleType  string    `json:"roleType" example:"STUDENT"`
	ExpiresAt time.Time `json:"expiresAt"`
}
