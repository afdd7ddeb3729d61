package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/seckernel/kernel-api/internal/core/domain"
)

// sessionClaims is the JWT payload of a session credential.
type sessionClaims struct {
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// JWTCodec signs session credentials with a single process-wide HS256 secret.
// Changing the secret invalidates every credential issued before.
type JWTCodec struct {
	secret []byte
	now    func() time.Time
}

func NewJWTCodec(secret string) *JWTCodec {
	return &JWTCodec{secret: []byte(secret), now: time.Now}
}

// WithClock replaces the time source. Tests use it to pin issuance and expiry.
func (c *JWTCodec) WithClock(now func() time.Time) *JWTCodec {
	return &JWTCodec{secret: c.secret, now: now}
}

// Encode mints a credential expiring ttl after issuance.
func (c *JWTCodec) Encode(claims domain.Claims, ttl time.Duration) (string, error) {
	if claims.SubjectID == "" {
		return "", fmt.Errorf("encode credential: %w", domain.ErrEmptySubject)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("encode credential: ttl must be positive, got %s", ttl)
	}

	issuedAt := c.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Email:   claims.Email,
		Name:    claims.DisplayName,
		Picture: claims.AvatarURL,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.SubjectID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
	})
	return t.SignedString(c.secret)
}

// Decode verifies signature then expiry and returns the embedded claims.
// Errors wrap domain.ErrInvalidSignature, domain.ErrExpired or
// domain.ErrMalformedCredential.
func (c *JWTCodec) Decode(credential string) (*domain.Claims, error) {
	var sc sessionClaims
	_, err := jwt.ParseWithClaims(credential, &sc,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}
	if sc.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrMalformedCredential)
	}

	claims := &domain.Claims{
		SubjectID:   sc.Subject,
		Email:       sc.Email,
		DisplayName: sc.Name,
		AvatarURL:   sc.Picture,
	}
	if sc.IssuedAt != nil {
		claims.IssuedAt = sc.IssuedAt.Time
	}
	if sc.ExpiresAt != nil {
		claims.ExpiresAt = sc.ExpiresAt.Time
	}
	return claims, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %w", domain.ErrMalformedCredential, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %w", domain.ErrInvalidSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %w", domain.ErrExpired, err)
	default:
		return fmt.Errorf("%w: %w", domain.ErrMalformedCredential, err)
	}
}
