// Package auth issues and validates the bearer tokens accepted by the
// HTTP API's optional auth middleware. There is no user/session store here:
// a token simply asserts a caller identity string, matching the ambient
// security posture described for a single-tenant retrieval core.
package auth

import (
	"crypto/sha256"
	"fmt"
	"io"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

// Claims is the minimal payload carried by a bearer token.
type Claims struct {
	Subject   string
	IssuedAt  int64
	ExpiresAt int64
}

type jwtClaims struct {
	Subject string `json:"sub"`
	jwt.RegisteredClaims
}

// Adapter issues and validates HS256 bearer tokens for the HTTP API.
type Adapter struct {
	secret []byte
}

// hkdfInfo binds the derived signing key to this adapter's purpose, so the
// same configured secret can't be replayed against a different HKDF consumer.
const hkdfInfo = "sercha-core/auth/bearer-token-hs256"

// NewAdapter creates a new auth adapter. secret is stretched through
// HKDF-SHA256 into the actual HS256 signing key, so a short or low-entropy
// AUTH_SECRET value doesn't become the literal HMAC key.
func NewAdapter(secret string) *Adapter {
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(hkdfInfo))
	signingKey := make([]byte, sha256.Size)
	if _, err := io.ReadFull(kdf, signingKey); err != nil {
		// hkdf.New with a SHA-256 hash and a single Size-length read never
		// fails; fall back to the raw secret only if it somehow does.
		signingKey = []byte(secret)
	}
	return &Adapter{secret: signingKey}
}

// IssueToken creates a signed bearer token for the given subject, valid for ttl.
func (a *Adapter) IssueToken(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	jc := jwtClaims{
		Subject: subject,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jc)
	return token.SignedString(a.secret)
}

// ValidateToken parses and verifies a bearer token, returning its claims.
func (a *Adapter) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	return &Claims{
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Unix(),
		ExpiresAt: claims.ExpiresAt.Unix(),
	}, nil
}
