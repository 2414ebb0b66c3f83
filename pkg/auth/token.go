package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/RigelNana/gazotheque/pkg/models"
	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carry the identity fields the dashboard reads from a session token.
type Claims struct {
	Role      string `json:"role"`
	IsStaff   bool   `json:"is_staff"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email,omitempty"`
	OwnerID   *int64 `json:"owner_id,omitempty"`
	jwt.RegisteredClaims
}

// User rebuilds the user snapshot carried by the token.
func (c *Claims) User() (*models.User, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: subject %q", ErrInvalidToken, c.Subject)
	}
	return &models.User{
		UserID:    id,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Role:      c.Role,
		IsStaff:   c.IsStaff,
		OwnerID:   c.OwnerID,
	}, nil
}

// Issuer signs and verifies HS256 session tokens shared with the identity
// provider.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// TTL is how long an issued token stays valid.
func (i *Issuer) TTL() time.Duration {
	return i.ttl
}

func (i *Issuer) Issue(u *models.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:      u.Role,
		IsStaff:   u.IsStaff,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		OwnerID:   u.OwnerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(u.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
