package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	PurposeID    = "id"
	PurposeReset = "reset"
)

var ErrInvalidToken = errors.New("invalid token")

type TokenMaker struct {
	secret []byte
	issuer string
}

func NewTokenMaker(secret string) *TokenMaker {
	return &TokenMaker{
		secret: []byte(secret),
		issuer: "storefront-auth",
	}
}

type Claims struct {
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Purpose string `json:"purpose"`
	// PassFP pins a reset token to the password hash it was issued
	// against; any password change spends it.
	PassFP string `json:"pfp,omitempty"`
	jwt.RegisteredClaims
}

func (t *TokenMaker) New(u User, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := Claims{
		UserID:  u.ID,
		Email:   u.Email,
		Name:    u.DisplayName,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	if purpose == PurposeReset {
		claims.PassFP = passwordFingerprint(u.Hash)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse validates signature, expiry and issuer, and that the token was
// minted for purpose.
func (t *TokenMaker) Parse(tokenStr, purpose string) (Claims, error) {
	var c Claims

	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	if c.Issuer != t.issuer || c.Purpose != purpose {
		return Claims{}, ErrInvalidToken
	}
	return c, nil
}

func passwordFingerprint(hash []byte) string {
	sum := sha256.Sum256(hash)
	return hex.EncodeToString(sum[:16])
}

// IssuedFor reports whether c was minted against the password hash the
// user holds now.
func (c Claims) IssuedFor(u User) bool {
	return c.UserID == u.ID &&
		subtle.ConstantTimeCompare([]byte(c.PassFP), []byte(passwordFingerprint(u.Hash))) == 1
}
