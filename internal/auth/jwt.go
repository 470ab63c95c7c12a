package auth

import (
	"crypto/rand"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"

	"JobPortal-backend/internal/config"
)

// JwtIssuer is the issuer of every access token
const JwtIssuer = "JobPortal"

var (
	keyMu          sync.RWMutex
	secretKey      = []byte(os.Getenv("SECRET_KEY"))
	accessTokenTTL = config.SessionTTL
)

func init() {
	if len(secretKey) == 0 {
		// Tokens will not survive a restart without SECRET_KEY.
		secretKey = make([]byte, 32)
		if _, err := rand.Read(secretKey); err != nil {
			panic(err)
		}
	}
}

// Configure sets the signing secret and the lifetime of standard tokens.
// Empty secret or non-positive ttl keep the current value.
func Configure(secret string, ttl time.Duration) {
	keyMu.Lock()
	defer keyMu.Unlock()
	if secret != "" {
		secretKey = []byte(secret)
	}
	if ttl > 0 {
		accessTokenTTL = ttl
	}
}

func signingKey() []byte {
	keyMu.RLock()
	defer keyMu.RUnlock()
	return secretKey
}

// TokenTTL returns the lifetime of standard tokens.
func TokenTTL() time.Duration {
	keyMu.RLock()
	defer keyMu.RUnlock()
	return accessTokenTTL
}

// GenerateStandardToken generates access token with the configured lifetime.
// The second return value is reserved for a refresh token and is always empty.
func GenerateStandardToken(id uuid.UUID) (string, string, error) {
	return GenerateTokenWithDuration(id, TokenTTL(), JwtIssuer)
}

// GenerateTokenWithDuration generates access token that expire after duration
func GenerateTokenWithDuration(id uuid.UUID, duration time.Duration, issuer string) (string, string, error) {
	now := time.Now()
	generatedAccessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    issuer,
		Subject:   id.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		IssuedAt:  jwt.NewNumericDate(now),
	})

	signedToken, err := generatedAccessToken.SignedString(signingKey())
	if err != nil {
		return "", "", fmt.Errorf("Failed to sign token: %s", err)
	}

	return signedToken, "", nil
}

// ValidatedToken parses encodeToken into *jwt.RegisteredClaims and verifies its signature and expiry.
func ValidatedToken(encodeToken string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(encodeToken, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, isvalid := token.Method.(*jwt.SigningMethodHMAC); !isvalid {
			return nil, fmt.Errorf("Invalid token")
		}
		return signingKey(), nil
	})
}
