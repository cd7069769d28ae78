package services

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pworkhq/portal/database"
)

// ErrBadCredentials is returned for any login failure. The caller surfaces it
// as a single inline message without distinguishing unknown user from wrong
// password.
var ErrBadCredentials = errors.New("invalid username or password")

type AuthService struct {
	jwtSecret []byte
}

func NewAuthService() *AuthService {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-default-secret-key-change-in-production"
	}

	return &AuthService{
		jwtSecret: []byte(jwtSecret),
	}
}

// Authenticate matches the identifier (username or email) against the user
// list and verifies the password. Stored bcrypt hashes are checked with
// bcrypt; anything else falls back to a plain comparison (demo accounts).
func (s *AuthService) Authenticate(users []database.User, identifier, password string) (*database.User, error) {
	if identifier == "" || password == "" {
		return nil, ErrBadCredentials
	}

	ident := strings.ToLower(identifier)
	for i := range users {
		u := &users[i]
		if strings.ToLower(u.Username) != ident && strings.ToLower(u.Email) != ident {
			continue
		}
		if !s.VerifyPassword(u.Password, password) {
			return nil, ErrBadCredentials
		}
		return u, nil
	}

	return nil, ErrBadCredentials
}

// VerifyPassword checks a supplied password against the stored value.
func (s *AuthService) VerifyPassword(stored, supplied string) bool {
	if stored == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
	}
	// Demo-mode fallback: plaintext comparison
	return stored == supplied
}

// HashPassword produces a bcrypt hash for storage.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CreateJWT generates a session token for a user
func (s *AuthService) CreateJWT(userID string) (string, error) {
	// Create token with claims
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour * 24 * 7).Unix(), // 7 days
	})

	// Sign the token
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// VerifyJWT verifies a session token and returns the user id
func (s *AuthService) VerifyJWT(tokenString string) (string, error) {
	// Parse the token
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	// Check if token is valid
	if !token.Valid {
		return "", errors.New("invalid token")
	}

	// Extract claims
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	// Get user id from claims
	userID, ok := claims["sub"].(string)
	if !ok {
		return "", errors.New("subject claim missing")
	}

	return userID, nil
}
