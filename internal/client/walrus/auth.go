package walrus

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by ParseToken for tokens that do not verify.
var ErrInvalidToken = errors.New("invalid publisher token")

// PublisherClaims is the payload an authenticated publisher expects: the
// upload is bound to one owner, one epoch count and one blob size.
type PublisherClaims struct {
	jwt.RegisteredClaims
	SendObjectTo string `json:"send_object_to,omitempty"`
	Epochs       int    `json:"epochs,omitempty"`
	Size         int64  `json:"size,omitempty"`
	MaxSize      int64  `json:"max_size,omitempty"`
}

// GenerateToken signs a HS256 publisher token valid for validity from now.
func GenerateToken(claims PublisherClaims, secretKey []byte, now time.Time, validity time.Duration) (string, error) {
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(validity))

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secretKey)
}

// ParseToken verifies tokenString and returns its claims.
func ParseToken(tokenString string, secretKey []byte) (*PublisherClaims, error) {
	claims := &PublisherClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
