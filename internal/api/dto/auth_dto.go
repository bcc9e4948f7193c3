package dto

import (
	"time"

	"github.com/spec-kit/marketplace-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Mobile   string          `json:"mobile"`
	Email    string          `json:"email"`
	Name     string          `json:"name"`
	Password string          `json:"password"`
	FCMToken string          `json:"fcmToken"`
	Role     domain.UserRole `json:"role"`
}

// LoginRequest payload.
type LoginRequest struct {
	Mobile   string          `json:"mobile"`
	Password string          `json:"password"`
	Role     domain.UserRole `json:"role"`
	FCMToken string          `json:"fcmToken"`
}

// PasswordUpdateRequest payload.
type PasswordUpdateRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// UserResponse is the authenticated user envelope.
type UserResponse struct {
	ID     int64           `json:"id"`
	Email  *string         `json:"email"`
	Mobile string          `json:"mobile"`
	Name   string          `json:"name"`
	Image  *string         `json:"image"`
	Token  string          `json:"token,omitempty"`
	Role   domain.UserRole `json:"role"`
}

// UserListItem is the admin listing row.
type UserListItem struct {
	ID        int64             `json:"id"`
	Mobile    string            `json:"mobile"`
	Email     *string           `json:"email"`
	Name      string            `json:"name"`
	Image     *string           `json:"image"`
	Role      domain.UserRole   `json:"role"`
	Status    domain.UserStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

// UserFromDomain maps a user with a session token.
func UserFromDomain(user *domain.User, token string) UserResponse {
	return UserResponse{
		ID:     user.ID,
		Email:  user.Email,
		Mobile: user.Mobile,
		Name:   user.Name,
		Image:  user.Image,
		Token:  token,
		Role:   user.Role,
	}
}

// UserListFromDomain maps the admin listing.
func UserListFromDomain(users []domain.User) []UserListItem {
	items := make([]UserListItem, 0, len(users))
	for i := range users {
		u := &users[i]
		items = append(items, UserListItem{
			ID:        u.ID,
			Mobile:    u.Mobile,
			Email:     u.Email,
			Name:      u.Name,
			Image:     u.Image,
			Role:      u.Role,
			Status:    u.Status,
			CreatedAt: u.CreatedAt,
		})
	}
	return items
}
