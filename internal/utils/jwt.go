package utils // package utils provides helper functions for token creation and verification

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for refresh tokens
	"encoding/hex"  // hex encoding of digests and random bytes
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

	"github.com/nvoxel/auth-service/internal/model"
)

// Verification failures are collapsed into two sentinel errors so that
// callers can map them onto the response taxonomy without inspecting
// library internals. An expired-but-otherwise-valid token is the only case
// reported as ErrTokenExpired; everything else (bad signature, malformed
// claims, wrong algorithm) is ErrTokenInvalid.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived and sent in the Authorization header when
// calling protected endpoints.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// RefreshToken represents a long-lived opaque token used to obtain new
// access tokens. The Raw field is returned to the client exactly once; the
// database only ever sees its SHA-256 hash.
type RefreshToken struct {
	Raw string    // raw token string returned to the client
	Exp time.Time // UTC expiration time
}

// Claims carries the verified contents of an access token. It is ephemeral
// and never persisted; the system trusts it only because the signature and
// expiry checked out.
type Claims struct {
	UserID    uint64
	Role      model.Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// NewAccessToken builds and signs an HS256 JWT for a user. The JWT carries
// the standard claims sub, role, exp and iat. Expiry is computed from a
// single UTC clock; verification later applies strict now < exp with zero
// skew tolerance.
func NewAccessToken(secret string, userID uint64, role model.Role, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(userID, 10),
		"role": string(role),
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken verifies the signature and expiry of an access token and
// returns its claims. This is a pure, stateless check: no store access. The
// signing method is pinned to HMAC so tokens signed with anything else are
// rejected outright.
func ParseAccessToken(secret, raw string) (Claims, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return Claims{}, ErrTokenInvalid
	}

	var c Claims
	switch sub := mc["sub"].(type) {
	case string:
		id, err := strconv.ParseUint(sub, 10, 64)
		if err != nil {
			return Claims{}, ErrTokenInvalid
		}
		c.UserID = id
	case float64:
		// numeric subjects decode as float64 through encoding/json
		c.UserID = uint64(sub)
	default:
		return Claims{}, ErrTokenInvalid
	}
	roleStr, _ := mc["role"].(string)
	c.Role = model.ParseRole(roleStr)
	if !c.Role.Valid() {
		return Claims{}, ErrTokenInvalid
	}
	if iat, ok := mc["iat"].(float64); ok {
		c.IssuedAt = time.Unix(int64(iat), 0).UTC()
	}
	exp, ok := mc["exp"].(float64)
	if !ok {
		return Claims{}, ErrTokenInvalid
	}
	c.ExpiresAt = time.Unix(int64(exp), 0).UTC()
	return c, nil
}

// NewRefreshToken returns a cryptographically secure random token and its
// expiration time. Refresh tokens never embed claims; they are opaque
// handles resolved against the refresh token store.
func NewRefreshToken(ttlDays int) (RefreshToken, error) {
	raw, err := randomHex(48) // 48 bytes -> 96 hex chars
	if err != nil {
		return RefreshToken{}, err
	}
	return RefreshToken{
		Raw: raw,
		Exp: time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour),
	}, nil
}

// HashRefreshRaw returns the SHA-256 hash of a raw refresh token as a hex
// string. Storing only the hash prevents stolen database rows from being
// replayed as live sessions.
func HashRefreshRaw(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
