package dto

import (
	"time"

	"github.com/mywallet/mywallet/internal/model"
)

// RegisterRequest represents the request body for POST /users.
type RegisterRequest struct {
	Name            Text `json:"name"`
	Email           Text `json:"email"`
	Password        Text `json:"password"`
	PasswordConfirm Text `json:"passwordConfirm"`
}

// Mistyped lists the fields that were not JSON strings.
func (r RegisterRequest) Mistyped() []string {
	return mistyped([]string{"name", "email", "password", "passwordConfirm"},
		r.Name, r.Email, r.Password, r.PasswordConfirm)
}

// SignInRequest represents the request body for POST /sign-in.
// Older clients send the password as "senha".
type SignInRequest struct {
	Email    Text `json:"email"`
	Password Text `json:"password"`
	Senha    Text `json:"senha,omitempty"`
}

// PasswordValue returns the password, falling back to the legacy field.
func (r SignInRequest) PasswordValue() string {
	if r.Password.Value != "" || r.Password.Invalid {
		return r.Password.Value
	}
	return r.Senha.Value
}

// Mistyped lists the fields that were not JSON strings. The password is
// mistyped when whichever field supplies it is.
func (r SignInRequest) Mistyped() []string {
	password := r.Password
	if password.Value == "" && !password.Invalid {
		password = r.Senha
	}
	return mistyped([]string{"email", "password"}, r.Email, password)
}

// SignInResponse is returned by a successful sign-in.
type SignInResponse struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

// UserResponse represents a user in API responses. The password hash is never included.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// ToUserListResponse converts a slice of users, never returning nil.
func ToUserListResponse(users []*model.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserResponse(u))
	}
	return out
}
