// internal/common/auth/download_token.go
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DownloadAudience = "lead-magnet"

var (
	ErrTokenSecretMissing = errors.New("DOWNLOAD_TOKEN_SECRET_MISSING")
	ErrTokenInvalid       = errors.New("DOWNLOAD_TOKEN_INVALID")
)

// DownloadTokens signs and verifies the HS256 links mailed to lead-magnet
// subscribers. The subject is the subscriber email.
type DownloadTokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewDownloadTokens(secret, issuer string, ttl time.Duration) *DownloadTokens {
	return &DownloadTokens{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue returns a signed token for email.
func (d *DownloadTokens) Issue(email string) (string, error) {
	if len(d.secret) == 0 {
		return "", ErrTokenSecretMissing
	}
	now := d.now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		Issuer:    d.issuer,
		Audience:  jwt.ClaimStrings{DownloadAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(d.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(d.secret)
	if err != nil {
		return "", fmt.Errorf("sign download token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, audience, issuer and expiry and returns the email.
func (d *DownloadTokens) Verify(token string) (string, error) {
	if len(d.secret) == 0 {
		return "", ErrTokenSecretMissing
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return d.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(DownloadAudience),
		jwt.WithIssuer(d.issuer),
		jwt.WithTimeFunc(d.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return claims.Subject, nil
}
