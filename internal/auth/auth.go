package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Common errors for authentication
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// HashPassword hashes a password using bcrypt
// Bcrypt is a password hashing function designed to be slow and computationally expensive
// This makes brute-force attacks impractical
func HashPassword(password string) (string, error) {
	// bcrypt.DefaultCost is 10, which means 2^10 iterations
	// This is a good balance between security and performance
	// Higher cost = more secure but slower (12-14 recommended for high security)
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashedBytes), nil
}

// ComparePassword compares a plain text password with a hashed password
// Returns nil if they match, or an error if they don't
// Use this during login to verify the user's password
func ComparePassword(hashedPassword, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	if err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}
	return nil
}

// Claims represents the JWT access-token claims. SessionID ties the token
// to a refresh session held in the cache collaborator; PersonalRoomID lets
// the dispatcher locate a user's own room without a store round trip.
type Claims struct {
	UserID         int64  `json:"user_id"`
	SessionID      string `json:"session_id"`
	PersonalRoomID int64  `json:"personal_room_id"`
	Role           string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a new JWT access token for a user session.
// Structure: header.payload.signature
//   - Header: token type and signing algorithm
//   - Payload: claims (user data)
//   - Signature: cryptographic signature to verify authenticity
func GenerateToken(claims Claims, ttl time.Duration, secret string) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	claims.Issuer = "chat-core"

	// HMAC-SHA256 is used for signing (symmetric key algorithm)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &claims)

	// Sign the token with the secret key
	// The secret must be kept secure and never exposed to clients
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT access token, returning its claims.
// This is used by middleware and the websocket upgrade guard to authenticate.
func ValidateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify that the signing method is HMAC
		// This prevents attacks where someone tries to change the algorithm
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
