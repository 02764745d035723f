// File: internal/user/model.go
package user

import (
	"time"

	"pcstore_backend/internal/common"
)

// User is the local record of an identity provider account.
type User struct {
	common.BaseModel `bson:",inline"`
	IdentityID       string `bson:"identityId" json:"identityId" validate:"required"`
	Username         string `bson:"username" json:"username" validate:"required,max=100"`
	Email            string `bson:"email" json:"email" validate:"required,email"`
	Role             string `bson:"role" json:"role" validate:"required,oneof=user admin"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID         string    `json:"_id"`
	IdentityID string    `json:"identityId"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ToUserResponse converts a User model to a UserResponse DTO.
func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:         u.ID.Hex(),
		IdentityID: u.IdentityID,
		Username:   u.Username,
		Email:      u.Email,
		Role:       u.Role,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
