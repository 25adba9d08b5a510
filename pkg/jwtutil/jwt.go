package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for every token that fails validation. Expired,
// forged and malformed tokens are deliberately indistinguishable.
var ErrInvalidToken = errors.New("invalid or expired token")

// UserClaims represents the identity carried by a session token
type UserClaims struct {
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Role     string    `json:"role"`
	jwt.RegisteredClaims
}

// JWTUtil issues and validates HS256 session tokens
type JWTUtil struct {
	signingKey []byte
	lifetime   time.Duration
	clock      clock.Clock
	parser     *jwt.Parser
}

// NewJWTUtil creates a new JWT utility. A nil clock means wall-clock time.
func NewJWTUtil(signingKey string, lifetime time.Duration, clk clock.Clock) *JWTUtil {
	if clk == nil {
		clk = clock.New()
	}
	return &JWTUtil{
		signingKey: []byte(signingKey),
		lifetime:   lifetime,
		clock:      clk,
		// time-based claims are checked against clock in Validate
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

// Lifetime returns how long issued tokens stay valid.
func (j *JWTUtil) Lifetime() time.Duration {
	return j.lifetime
}

// Issue creates a signed token for the given identity and returns its expiry.
func (j *JWTUtil) Issue(userID, tenantID uuid.UUID, role string) (string, time.Time, error) {
	now := j.clock.Now()
	expiresAt := now.Add(j.lifetime)

	claims := UserClaims{
		UserID:   userID,
		TenantID: tenantID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate parses the token and returns its claims, or ErrInvalidToken.
func (j *JWTUtil) Validate(tokenString string) (*UserClaims, error) {
	claims := &UserClaims{}
	token, err := j.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.signingKey, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	// tokens without an expiry would never age out
	now := j.clock.Now()
	if !claims.VerifyExpiresAt(now, true) || !claims.VerifyNotBefore(now, false) || !claims.VerifyIssuedAt(now, false) {
		return nil, ErrInvalidToken
	}
	if claims.UserID == uuid.Nil || claims.TenantID == uuid.Nil || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
