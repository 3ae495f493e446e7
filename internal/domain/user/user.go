package user

import (
	"regexp"
	"strings"
	"time"

	"github.com/example/ec-storefront/internal/apperr"
)

const AggregateType = "User"

var (
	ErrUserNotFound       = apperr.New(apperr.CodeNotFound, "User not found")
	ErrInvalidEmail       = apperr.New(apperr.CodeValidation, "a valid email is required")
	ErrInvalidName        = apperr.New(apperr.CodeValidation, "name is required")
	ErrUserExists         = apperr.New(apperr.CodeConflict, "User already exists")
	ErrInvalidCredentials = apperr.New(apperr.CodeUnauthorized, "Invalid email or password")
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*\.[a-zA-Z]{2,}$`)

const maxEmailLength = 254

func isValidEmail(email string) bool {
	return len(email) <= maxEmailLength && emailPattern.MatchString(email)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// User is the stored account document. Password holds the bcrypt hash and
// must never be returned to API clients.
type User struct {
	ID        string    `json:"_id" bson:"_id"`
	Name      string    `json:"name" bson:"name"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"password" bson:"password"`
	IsAdmin   bool      `json:"isAdmin" bson:"isAdmin"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
	Version   int64     `json:"__v" bson:"__v"`
}

// Role returns the token role for the user.
func (u User) Role() string {
	if u.IsAdmin {
		return RoleAdmin
	}
	return RoleCustomer
}
