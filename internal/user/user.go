package user

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTutor   Role = "tutor"
)

type User struct {
	ID        string    `json:"id"`
	ClerkID   string    `json:"clerkId"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	ImageURL  *string `json:"imageUrl,omitempty"`
}
