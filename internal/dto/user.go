package dto

import "github.com/AlShabiliBadia/Shorter-links/internal/model"

type SignupRequest struct {
	Username             string `json:"username" validate:"required,max=80"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserDisplay is the public view of an account; it never carries the password hash.
type UserDisplay struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func NewUserDisplay(u *model.User) UserDisplay {
	return UserDisplay{ID: u.ID, Username: u.Username, Email: u.Email}
}
