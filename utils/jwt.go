package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/cppla/forumapp/config"
)

const tokenIssuer = "forumapp"

var (
	errNoSecret    = errors.New("jwt secret not configured")
	errNoSubject   = errors.New("token has no subject")
	signingMethods = []string{jwt.SigningMethodHS256.Alg()}
)

// Claims identify a forum account. The username travels as the subject.
type Claims struct {
	UserID uint `json:"uid"`
	jwt.RegisteredClaims
}

// Username returns the account name the token was issued to.
func (c *Claims) Username() string { return c.Subject }

// TokenTTL returns the configured token lifetime.
func TokenTTL() time.Duration {
	return time.Duration(config.Get().TokenTTLHours) * time.Hour
}

func signingKey() ([]byte, error) {
	secret := config.Get().JWTSecret
	if secret == "" {
		return nil, errNoSecret
	}
	return []byte(secret), nil
}

// GenerateToken signs an HS256 token for the account, valid for ttl.
func GenerateToken(userID uint, username string, ttl time.Duration) (string, error) {
	key, err := signingKey()
	if err != nil {
		return "", err
	}
	now := time.Now()
	return jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}).SignedString(key)
}

// ParseToken verifies signature, issuer and expiry and returns the claims.
func ParseToken(raw string) (*Claims, error) {
	key, err := signingKey()
	if err != nil {
		return nil, err
	}
	claims := &Claims{}
	_, err = jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	},
		jwt.WithValidMethods(signingMethods),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.UserID == 0 {
		return nil, errNoSubject
	}
	return claims, nil
}
