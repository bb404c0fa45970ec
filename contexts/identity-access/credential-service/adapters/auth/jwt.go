package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"

	"electra/contexts/identity-access/credential-service/ports"
)

const defaultTokenTTL = time.Hour

// JWTIssuer mints HS256 access tokens with the voter id as subject.
type JWTIssuer struct {
	Secret []byte
	TTL    time.Duration
}

func (i JWTIssuer) Issue(voterID string, now time.Time) (string, time.Time, error) {
	ttl := i.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	expiresAt := now.UTC().Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":      voterID,
		"voter_id": voterID,
		"iat":      now.UTC().Unix(),
		"exp":      expiresAt.Unix(),
	})
	signed, err := token.SignedString(i.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

var _ ports.TokenIssuer = JWTIssuer{}
