package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"charityportal/pkg/types"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

const (
	claimUserID = "userId"
	claimEmail  = "email"
	claimRole   = "role"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the identity carried by a session token.
type Claims struct {
	UserID    int64      `json:"userId"`
	Email     string     `json:"email"`
	Role      types.Role `json:"role"`
	IssuedAt  time.Time  `json:"iat"`
	ExpiresAt time.Time  `json:"exp"`
}

// TokenIssuer signs and verifies HS256 session tokens. Tokens are stateless:
// there is no refresh and no revocation.
type TokenIssuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		key: []byte(secret),
		ttl: ttl,
		now: time.Now,
	}
}

// WithClock overrides the issuer's clock.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	i.now = now
	return i
}

func (i *TokenIssuer) Issue(user *types.User) (string, error) {
	issuedAt := i.now().Truncate(time.Second)

	token, err := jwt.NewBuilder().
		Subject(strconv.FormatInt(user.ID, 10)).
		IssuedAt(issuedAt).
		Expiration(issuedAt.Add(i.ttl)).
		Claim(claimUserID, user.ID).
		Claim(claimEmail, user.Email).
		Claim(claimRole, string(user.Role)).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), i.key))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}

// Verify checks the signature and expiry and returns the token's claims.
// Every failure is reported as ErrInvalidToken.
func (i *TokenIssuer) Verify(raw string) (*Claims, error) {
	token, err := jwt.Parse(
		[]byte(raw),
		jwt.WithKey(jwa.HS256(), i.key),
		jwt.WithValidate(true),
		jwt.WithClock(jwt.ClockFunc(i.now)),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	subject, ok := token.Subject()
	if !ok {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("%w: malformed subject %q", ErrInvalidToken, subject)
	}

	var email, role string
	if err := token.Get(claimEmail, &email); err != nil {
		return nil, fmt.Errorf("%w: missing email claim", ErrInvalidToken)
	}
	if err := token.Get(claimRole, &role); err != nil {
		return nil, fmt.Errorf("%w: missing role claim", ErrInvalidToken)
	}

	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   types.Role(role),
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, role)
	}

	if iat, ok := token.IssuedAt(); ok {
		claims.IssuedAt = iat
	}
	if exp, ok := token.Expiration(); ok {
		claims.ExpiresAt = exp
	}

	return claims, nil
}
