package utils // package utils provides helper functions for token creation and hashing

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenTTL is how long an issued bearer token stays valid.
const AccessTokenTTL = 24 * time.Hour

// AccessToken represents a signed JWT along with its expiry. The token binds
// the account id and email; those claims are threaded into every audit
// entry written during the token's lifetime.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for an account. The claims
// are the account id, its email, expiration (exp) and issued at (iat).
func NewAccessToken(secret string, userID uint64, email string) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(AccessTokenTTL)
	claims := jwt.MapClaims{
		"id":    userID,
		"email": email,
		"exp":   exp.Unix(),
		"iat":   now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
