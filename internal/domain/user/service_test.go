package user

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/example/ec-storefront/internal/apperr"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/infrastructure/store/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUserService() (*Service, *mocks.MockStore, *mocks.MockPublisher) {
	ds := mocks.NewMockStore()
	pub := mocks.NewMockPublisher()
	return NewService(ds, pub), ds, pub
}

// ============================================
// Email Validation Tests
// ============================================

func TestIsValidEmail_ValidEmails(t *testing.T) {
	validEmails := []string{
		"test@example.com",
		"user.name@domain.org",
		"user+tag@example.com",
		"user123@test.co.jp",
		"a@b.cd",
		"user_name@domain.com",
		"USER@EXAMPLE.COM",
		"test@subdomain.example.com",
	}

	for _, email := range validEmails {
		t.Run(email, func(t *testing.T) {
			assert.True(t, isValidEmail(email), "Expected %s to be valid", email)
		})
	}
}

func TestIsValidEmail_InvalidEmails(t *testing.T) {
	invalidEmails := []string{
		"",
		"notanemail",
		"@example.com",
		"user@",
		"user@.com",
		"user@domain",
		"user@domain.",
		"user space@example.com",
		"user@exam ple.com",
		strings.Repeat("a", 255) + "@example.com",
	}

	for _, email := range invalidEmails {
		t.Run(email, func(t *testing.T) {
			assert.False(t, isValidEmail(email), "Expected %s to be invalid", email)
		})
	}
}

// ============================================
// Register Tests
// ============================================

func TestService_Register_Success(t *testing.T) {
	service, ds, pub := newTestUserService()
	ctx := context.Background()

	u, err := service.Register(ctx, "John@Example.com", "password123", "John Doe")

	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "john@example.com", u.Email)
	assert.Equal(t, "John Doe", u.Name)
	assert.False(t, u.IsAdmin)
	assert.Equal(t, RoleCustomer, u.Role())
	assert.NotEqual(t, "password123", u.Password)
	assert.True(t, auth.CheckPassword("password123", u.Password))

	require.Len(t, ds.InsertCalls, 2)
	assert.Equal(t, store.CollectionEmails, ds.InsertCalls[0].Collection)
	assert.Equal(t, "john@example.com", ds.InsertCalls[0].ID)
	assert.Equal(t, store.CollectionUsers, ds.InsertCalls[1].Collection)
	assert.Equal(t, []string{EventUserRegistered}, pub.EventTypes())
}

func TestService_Register_InvalidEmail(t *testing.T) {
	service, ds, _ := newTestUserService()

	u, err := service.Register(context.Background(), "invalid-email", "password123", "John")

	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.ErrorIs(t, err, apperr.Validation)
	assert.Nil(t, u)
	assert.Empty(t, ds.InsertCalls)
}

func TestService_Register_EmptyName(t *testing.T) {
	service, _, _ := newTestUserService()

	_, err := service.Register(context.Background(), "john@example.com", "password123", "")

	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestService_Register_ShortPassword(t *testing.T) {
	service, ds, _ := newTestUserService()

	_, err := service.Register(context.Background(), "john@example.com", "short", "John")

	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
	assert.ErrorIs(t, err, apperr.Validation)
	assert.Empty(t, ds.InsertCalls)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	service, ds, _ := newTestUserService()
	ctx := context.Background()

	_, err := service.Register(ctx, "john@example.com", "password123", "John")
	require.NoError(t, err)
	_, err = service.Register(ctx, "JOHN@example.com", "password456", "Other John")

	assert.ErrorIs(t, err, ErrUserExists)
	assert.Len(t, ds.InsertCalls, 2)
}

func TestService_Register_EmailAlreadyClaimed(t *testing.T) {
	service, ds, pub := newTestUserService()
	ds.Seed(store.CollectionEmails, "john@example.com", emailClaim{Email: "john@example.com", UserID: "other"})

	_, err := service.Register(context.Background(), "John@example.com", "password123", "John")

	assert.ErrorIs(t, err, ErrUserExists)
	assert.ErrorIs(t, err, apperr.Conflict)
	require.Len(t, ds.InsertCalls, 1)
	assert.Equal(t, store.CollectionEmails, ds.InsertCalls[0].Collection)
	assert.Empty(t, pub.PublishCalls)
}

func TestService_Register_ConcurrentSameEmail(t *testing.T) {
	service, _, _ := newTestUserService()

	const attempts = 4
	var wg sync.WaitGroup
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Register(context.Background(), "john@example.com", "password123", "John")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, exists int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrUserExists):
			exists++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, exists)
}

// usersDown fails user inserts only.
type usersDown struct {
	*mocks.MockStore
}

func (s usersDown) Insert(ctx context.Context, collection, id string, doc any) error {
	if collection == store.CollectionUsers {
		return errors.New("disk full")
	}
	return s.MockStore.Insert(ctx, collection, id, doc)
}

func TestService_Register_ReleasesClaimOnFailure(t *testing.T) {
	ds := mocks.NewMockStore()
	service := NewService(usersDown{ds}, mocks.NewMockPublisher())

	_, err := service.Register(context.Background(), "john@example.com", "password123", "John")

	require.Error(t, err)
	require.Len(t, ds.DeleteCalls, 1)
	assert.Equal(t, store.CollectionEmails, ds.DeleteCalls[0].Collection)
	var claim emailClaim
	assert.ErrorIs(t, ds.Get(context.Background(), store.CollectionEmails, "john@example.com", &claim), store.ErrNotFound)
}

func TestService_Register_DuplicateFromStoreIndex(t *testing.T) {
	service, ds, _ := newTestUserService()
	ds.InsertErr = store.ErrDuplicateID

	_, err := service.Register(context.Background(), "john@example.com", "password123", "John")

	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_Register_StoreError(t *testing.T) {
	service, ds, pub := newTestUserService()
	ds.InsertErr = errors.New("disk full")

	_, err := service.Register(context.Background(), "john@example.com", "password123", "John")

	assert.Error(t, err)
	assert.Equal(t, apperr.CodeUnknown, apperr.CodeOf(err))
	assert.Empty(t, pub.PublishCalls)
}

func TestService_RegisterAdmin_Success(t *testing.T) {
	service, _, _ := newTestUserService()

	u, err := service.RegisterAdmin(context.Background(), "admin@example.com", "adminpass123", "Admin")

	require.NoError(t, err)
	assert.True(t, u.IsAdmin)
	assert.Equal(t, RoleAdmin, u.Role())
}

// ============================================
// Authenticate / Lookup Tests
// ============================================

func TestService_Authenticate_Success(t *testing.T) {
	service, _, _ := newTestUserService()
	ctx := context.Background()
	registered, err := service.Register(ctx, "john@example.com", "password123", "John")
	require.NoError(t, err)

	u, err := service.Authenticate(ctx, "  JOHN@example.com ", "password123")

	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)
}

func TestService_Authenticate_WrongPassword(t *testing.T) {
	service, _, _ := newTestUserService()
	ctx := context.Background()
	_, err := service.Register(ctx, "john@example.com", "password123", "John")
	require.NoError(t, err)

	u, err := service.Authenticate(ctx, "john@example.com", "wrongpassword")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, err, apperr.Unauthorized)
	assert.Nil(t, u)
}

func TestService_Authenticate_UnknownEmail(t *testing.T) {
	service, _, _ := newTestUserService()

	_, err := service.Authenticate(context.Background(), "nobody@example.com", "password123")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Get(t *testing.T) {
	service, _, _ := newTestUserService()
	ctx := context.Background()
	registered, err := service.Register(ctx, "john@example.com", "password123", "John")
	require.NoError(t, err)

	u, err := service.Get(ctx, registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "John", u.Name)

	_, err = service.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
