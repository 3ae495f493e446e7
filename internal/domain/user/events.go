package user

import "time"

const EventUserRegistered = "UserRegistered"

// UserRegistered is emitted when a new user is registered
type UserRegistered struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
