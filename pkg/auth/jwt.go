package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrMissingKey   = errors.New("signing key is not configured")
)

// Identity is the authenticated staff member behind a request. Sign-in
// happens elsewhere; this service only ever sees the resulting token.
type Identity struct {
	UserID uuid.UUID
}

func (i Identity) IsZero() bool {
	return i.UserID == uuid.Nil
}

// Claims carries the staff user id in the registered subject claim.
type Claims struct {
	jwt.RegisteredClaims
}

type Config struct {
	Secret string
	Issuer string
}

// Verifier validates HS256 staff tokens.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(cfg Config) *Verifier {
	return &Verifier{secret: []byte(cfg.Secret), issuer: cfg.Issuer}
}

func (v *Verifier) Verify(tokenString string) (Identity, error) {
	if len(v.secret) == 0 {
		return Identity{}, ErrMissingKey
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return Identity{}, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}

	return Identity{UserID: userID}, nil
}

// Issuer signs staff tokens. Used by the operator CLI and tests; production
// tokens normally come from the external sign-in service sharing the secret.
type Issuer struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	return &Issuer{secret: []byte(cfg.Secret), issuer: cfg.Issuer, now: time.Now}
}

func (i *Issuer) Issue(userID uuid.UUID, ttl time.Duration) (string, error) {
	if len(i.secret) == 0 {
		return "", ErrMissingKey
	}

	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
