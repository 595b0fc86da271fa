package dto

import "reviewhub/internal/microservices/http-api/models"

// CreateUserRequest is used by admins on POST /users
type CreateUserRequest struct {
	Username  string       `json:"username" binding:"required,max=150"`
	Email     string       `json:"email" binding:"required,email,max=254"`
	FirstName string       `json:"first_name" binding:"max=150"`
	LastName  string       `json:"last_name" binding:"max=150"`
	Bio       string       `json:"bio"`
	Role      *models.Role `json:"role,omitempty" binding:"omitempty,oneof=user moderator admin"`
}

// UpdateUserRequest is a partial update; nil fields are left alone.
type UpdateUserRequest struct {
	Username  *string      `json:"username,omitempty" binding:"omitempty,max=150"`
	Email     *string      `json:"email,omitempty" binding:"omitempty,email,max=254"`
	FirstName *string      `json:"first_name,omitempty" binding:"omitempty,max=150"`
	LastName  *string      `json:"last_name,omitempty" binding:"omitempty,max=150"`
	Bio       *string      `json:"bio,omitempty"`
	Role      *models.Role `json:"role,omitempty" binding:"omitempty,oneof=user moderator admin"`
}

type UserResponse struct {
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Bio       string      `json:"bio"`
	Role      models.Role `json:"role"`
}

func (d CreateUserRequest) ToModel() models.User {
	role := models.RoleUser
	if d.Role != nil {
		role = *d.Role
	}
	return models.User{
		Username:  d.Username,
		Email:     d.Email,
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Bio:       d.Bio,
		Role:      role,
		CodeState: models.CodeNone,
	}
}

// ApplyTo copies the set fields onto u. allowRole is false for /users/me,
// where a submitted role is ignored.
func (d UpdateUserRequest) ApplyTo(u *models.User, allowRole bool) {
	if d.Username != nil {
		u.Username = *d.Username
	}
	if d.Email != nil {
		u.Email = *d.Email
	}
	if d.FirstName != nil {
		u.FirstName = *d.FirstName
	}
	if d.LastName != nil {
		u.LastName = *d.LastName
	}
	if d.Bio != nil {
		u.Bio = *d.Bio
	}
	if allowRole && d.Role != nil {
		u.Role = *d.Role
	}
}

func FromModelToUserResponse(u *models.User) UserResponse {
	return UserResponse{
		Username:  u.Username,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Role:      u.Role,
	}
}
