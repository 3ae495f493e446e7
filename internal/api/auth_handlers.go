package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/apperr"
	"github.com/example/ec-storefront/internal/auth"
	"github.com/example/ec-storefront/internal/command"
	"github.com/example/ec-storefront/internal/domain/user"
	"github.com/example/ec-storefront/internal/infrastructure/store"
	"github.com/example/ec-storefront/internal/query"
)

const (
	refreshTokenCookie = "refresh_token"
	sessionCookie      = "session_id"
	refreshPath        = "/api/users/refresh"
)

var (
	errNoRefreshToken      = apperr.New(apperr.CodeUnauthorized, "No refresh token")
	errNoSession           = apperr.New(apperr.CodeUnauthorized, "No session")
	errInvalidRefreshToken = apperr.New(apperr.CodeUnauthorized, "Invalid refresh token")
	errSessionNotFound     = apperr.New(apperr.CodeUnauthorized, "Session not found")
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	jwtService   *auth.JWTService
	sessions     store.DocumentStore
	now          func() time.Time
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, jwtService *auth.JWTService, sessions store.DocumentStore) *AuthHandlers {
	return &AuthHandlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		jwtService:   jwtService,
		sessions:     sessions,
		now:          time.Now,
	}
}

// AuthResponse is returned by register and login. The token is also set as
// the access_token cookie.
type AuthResponse struct {
	ID      string `json:"_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
	Token   string `json:"token"`
}

// Register handles user registration
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var cmd command.RegisterUser
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, r, err)
		return
	}

	newUser, err := h.cmdHandler.RegisterUser(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}

	token, err := h.setAuthCookies(w, r, newUser)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, authResponse(newUser, token))
}

// Login handles user login
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var cmd command.Login
	if err := decodeJSON(r, &cmd); err != nil {
		respondError(w, r, err)
		return
	}

	u, err := h.cmdHandler.Login(r.Context(), cmd)
	if err != nil {
		respondError(w, r, err)
		return
	}

	token, err := h.setAuthCookies(w, r, u)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, authResponse(u, token))
}

// Logout deletes the current session and clears the auth cookies.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil && cookie.Value != "" {
		if err := h.sessions.Delete(r.Context(), store.CollectionSessions, cookie.Value); err != nil && !errors.Is(err, store.ErrNotFound) {
			log.Printf("[Auth] Failed to delete session %s: %v", cookie.Value, err)
		}
	}

	h.clearAuthCookies(w)
	respondMessage(w, http.StatusOK, "Logged out successfully")
}

// Refresh rotates the session and issues a new access token.
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshCookie, err := r.Cookie(refreshTokenCookie)
	if err != nil {
		respondError(w, r, errNoRefreshToken)
		return
	}

	sessionIDCookie, err := r.Cookie(sessionCookie)
	if err != nil {
		h.clearAuthCookies(w)
		respondError(w, r, errNoSession)
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(refreshCookie.Value)
	if err != nil {
		h.clearAuthCookies(w)
		respondError(w, r, errInvalidRefreshToken)
		return
	}

	var session auth.Session
	if err := h.sessions.Get(r.Context(), store.CollectionSessions, sessionIDCookie.Value, &session); err != nil {
		h.clearAuthCookies(w)
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, r, errSessionNotFound)
			return
		}
		respondError(w, r, err)
		return
	}

	if session.User != userID || !session.Matches(refreshCookie.Value, h.now()) {
		h.deleteSession(r.Context(), session.ID)
		h.clearAuthCookies(w)
		respondError(w, r, errInvalidRefreshToken)
		return
	}

	profile, err := h.queryHandler.GetUser(r.Context(), userID)
	if err != nil {
		h.clearAuthCookies(w)
		respondError(w, r, err)
		return
	}

	h.deleteSession(r.Context(), session.ID)

	u := &user.User{ID: profile.ID, Name: profile.Name, Email: profile.Email, IsAdmin: profile.IsAdmin}
	if _, err := h.setAuthCookies(w, r, u); err != nil {
		respondError(w, r, err)
		return
	}
	respondMessage(w, http.StatusOK, "Token refreshed")
}

// Profile returns the current authenticated user's information
func (h *AuthHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.queryHandler.GetUser(r.Context(), middleware.UserIDFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

// Helper methods

func authResponse(u *user.User, token string) AuthResponse {
	return AuthResponse{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
		Token:   token,
	}
}

// setAuthCookies issues both tokens, stores a session for the refresh token
// and returns the access token.
func (h *AuthHandlers) setAuthCookies(w http.ResponseWriter, r *http.Request, u *user.User) (string, error) {
	accessToken, accessExpiry, err := h.jwtService.GenerateAccessToken(auth.Identity{
		UserID: u.ID,
		Email:  u.Email,
		Name:   u.Name,
		Role:   u.Role(),
	})
	if err != nil {
		return "", err
	}

	refreshToken, refreshExpiry, err := h.jwtService.GenerateRefreshToken(u.ID)
	if err != nil {
		return "", err
	}

	session := auth.Session{
		ID:               uuid.New().String(),
		User:             u.ID,
		RefreshTokenHash: auth.HashToken(refreshToken),
		ExpiresAt:        refreshExpiry,
		CreatedAt:        h.now(),
		IPAddress:        r.RemoteAddr,
		UserAgent:        r.UserAgent(),
	}
	if err := h.sessions.Insert(r.Context(), store.CollectionSessions, session.ID, &session); err != nil {
		return "", err
	}

	secure := r.TLS != nil
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		Expires:  accessExpiry,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    refreshToken,
		Path:     refreshPath,
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.ID,
		Path:     "/",
		Expires:  refreshExpiry,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	})

	return accessToken, nil
}

func (h *AuthHandlers) deleteSession(ctx context.Context, id string) {
	if err := h.sessions.Delete(ctx, store.CollectionSessions, id); err != nil && !errors.Is(err, store.ErrNotFound) {
		log.Printf("[Auth] Failed to delete session %s: %v", id, err)
	}
}

func (h *AuthHandlers) clearAuthCookies(w http.ResponseWriter) {
	for _, c := range []struct{ name, path string }{
		{middleware.AccessTokenCookie, "/"},
		{refreshTokenCookie, refreshPath},
		{sessionCookie, "/"},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     c.path,
			MaxAge:   -1,
			HttpOnly: true,
		})
	}
}
