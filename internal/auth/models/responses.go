package models

// This file contains transport-layer response models for JSON output.

// UserResponse is the public view of a user. It never carries the password hash.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// UserEnvelope is the body of every auth endpoint that returns a user.
// User is null for anonymous callers of /me.
type UserEnvelope struct {
	User *UserResponse `json:"user"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

type UsersResponse struct {
	Users []UserResponse `json:"users"`
}

func NewUserResponse(u *User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:    u.ID.String(),
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role.String(),
	}
}
