package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/event"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

// emailClaim reserves an email address for one user.
type emailClaim struct {
	Email  string `json:"_id" bson:"_id"`
	UserID string `json:"user" bson:"user"`
}

// Service handles user domain operations
type Service struct {
	store     store.DocumentStore
	publisher event.Publisher
	now       func() time.Time
}

// NewService creates a new user service
func NewService(ds store.DocumentStore, pub event.Publisher) *Service {
	return &Service{store: ds, publisher: pub, now: time.Now}
}

// Register creates a new customer
func (s *Service) Register(ctx context.Context, email, password, name string) (*User, error) {
	return s.register(ctx, email, password, name, false)
}

// RegisterAdmin creates a new admin user
func (s *Service) RegisterAdmin(ctx context.Context, email, password, name string) (*User, error) {
	return s.register(ctx, email, password, name, true)
}

func (s *Service) register(ctx context.Context, email, password, name string, isAdmin bool) (*User, error) {
	email = normalizeEmail(email)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if name == "" {
		return nil, ErrInvalidName
	}

	if _, err := s.FindByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := s.now()
	u := User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Password:  passwordHash,
		IsAdmin:   isAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// Ids are unique on every backend, so claiming the email as an id
	// settles concurrent registrations of the same address.
	claim := emailClaim{Email: u.Email, UserID: u.ID}
	if err := s.store.Insert(ctx, store.CollectionEmails, u.Email, claim); err != nil {
		if errors.Is(err, store.ErrDuplicateID) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("claim email: %w", err)
	}

	if err := s.store.Insert(ctx, store.CollectionUsers, u.ID, u); err != nil {
		if delErr := s.store.Delete(ctx, store.CollectionEmails, u.Email); delErr != nil {
			log.Printf("[User] Failed to release email claim for %s: %v", u.Email, delErr)
		}
		if errors.Is(err, store.ErrDuplicateID) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}

	e := UserRegistered{UserID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role(), CreatedAt: now}
	if err := event.Emit(ctx, s.publisher, u.ID, AggregateType, EventUserRegistered, u.Version, e); err != nil {
		log.Printf("[User] Failed to publish %s for user %s: %v", EventUserRegistered, u.ID, err)
	}
	return &u, nil
}

// Authenticate returns the user whose credentials match.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	u, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(password, u.Password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Get loads a user by id.
func (s *Service) Get(ctx context.Context, userID string) (*User, error) {
	var u User
	if err := s.store.Get(ctx, store.CollectionUsers, userID, &u); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %s: %w", userID, err)
	}
	return &u, nil
}

// FindByEmail looks a user up by email, ignoring case.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	var users []User
	q := store.Query{Equals: map[string]string{"email": normalizeEmail(email)}, Limit: 1}
	if err := s.store.Find(ctx, store.CollectionUsers, q, &users); err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrUserNotFound
	}
	return &users[0], nil
}
