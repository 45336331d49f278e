// Package auth signs session claims and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lasmate/Alisee/internal/model"
)

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims identifies the session row a token was issued for.
type SessionClaims struct {
	UserID    int64
	SessionID string
}

// Issuer signs and verifies HS256 session tokens. The token only names a session;
// whether that session is still live is decided by the sessions table.
type Issuer struct {
	secret []byte
}

func NewIssuer(secret []byte) *Issuer {
	return &Issuer{secret: secret}
}

func (i *Issuer) Issue(s model.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(s.UserID, 10),
		ID:        s.ID,
		IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature and expiry.
func (i *Issuer) Parse(token string) (*SessionClaims, error) {
	return i.parse(token)
}

// ParseExpired verifies the signature only. Used to revoke sessions whose claim has lapsed.
func (i *Issuer) ParseExpired(token string) (*SessionClaims, error) {
	return i.parse(token, jwt.WithoutClaimsValidation())
}

func (i *Issuer) parse(token string, opts ...jwt.ParserOption) (*SessionClaims, error) {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return &SessionClaims{UserID: userID, SessionID: claims.ID}, nil
}
