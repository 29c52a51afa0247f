package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT signs and validates access tokens with an HMAC secret.
type JWT struct {
	secret []byte
	exp    time.Duration
}

// Claims are the token claims this service issues. The tenant lives in its
// own "tid" claim rather than being packed into the subject.
type Claims struct {
	jwt.RegisteredClaims
	TenantID string `json:"tid,omitempty"`
}

// GetTenantID returns the tenant claim.
func (c *Claims) GetTenantID() string { return c.TenantID }

// NewJWT builds a signer issuing tokens that expire after exp.
func NewJWT(secret string, exp time.Duration) *JWT {
	return &JWT{secret: []byte(secret), exp: exp}
}

// Generate signs a token without a tenant claim.
func (j *JWT) Generate(userID uint64) (string, error) {
	return j.GenerateWithTenant(userID, "")
}

// GenerateWithTenant signs a token for a user within a tenant. An empty
// tenantID omits the claim entirely.
func (j *JWT) GenerateWithTenant(userID uint64, tenantID string) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(j.exp)),
		},
		TenantID: tenantID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
}

// Validate parses a token and returns its claims. Tokens signed with any
// method other than HMAC are rejected outright.
func (j *JWT) Validate(tok string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tok, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
