package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Session ties a refresh token to a user. Only the token hash is stored.
type Session struct {
	ID               string    `json:"_id" bson:"_id"`
	User             string    `json:"user" bson:"user"`
	RefreshTokenHash string    `json:"refreshTokenHash" bson:"refreshTokenHash"`
	ExpiresAt        time.Time `json:"expiresAt" bson:"expiresAt"`
	CreatedAt        time.Time `json:"createdAt" bson:"createdAt"`
	IPAddress        string    `json:"ipAddress" bson:"ipAddress"`
	UserAgent        string    `json:"userAgent" bson:"userAgent"`
	Version          int64     `json:"__v" bson:"__v"`
}

// Matches reports whether refreshToken belongs to the session and the
// session is still valid at now.
func (s Session) Matches(refreshToken string, now time.Time) bool {
	return now.Before(s.ExpiresAt) && HashToken(refreshToken) == s.RefreshTokenHash
}

// HashToken creates a SHA-256 hash of the token for secure storage
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
