package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/infrastructure/config"
)

// Common errors
var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token has expired")
	ErrInvalidClaims     = errors.New("invalid token claims")
	ErrTokenNotYetValid  = errors.New("token is not yet valid")
	ErrMissingPharmacyID = errors.New("missing pharmacy_id in claims")
	ErrMissingUserID     = errors.New("missing user_id in claims")
)

// Principal is the authenticated caller. Every operation is scoped to its
// PharmacyID.
type Principal struct {
	ID         uuid.UUID
	Role       string
	PharmacyID uuid.UUID
}

// Claims represents custom JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID     string `json:"user_id"`
	Role       string `json:"role"`
	PharmacyID string `json:"pharmacy_id"`
}

// JWTService issues and validates principal tokens. Tokens are signed
// with HS256 using the configured secret.
type JWTService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// IssueToken signs a token for p valid for ttl
func (s *JWTService) IssueToken(p Principal, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   p.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:     p.ID.String(),
		Role:       p.Role,
		PharmacyID: p.PharmacyID.String(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken verifies a token and returns its principal
func (s *JWTService) ValidateToken(tokenString string) (*Principal, error) {
	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	return claims.Principal()
}

// Principal extracts and parses the caller from the claims
func (c *Claims) Principal() (*Principal, error) {
	if c.PharmacyID == "" {
		return nil, ErrMissingPharmacyID
	}
	if c.UserID == "" {
		return nil, ErrMissingUserID
	}
	pharmacyID, err := uuid.Parse(c.PharmacyID)
	if err != nil || pharmacyID == uuid.Nil {
		return nil, ErrInvalidClaims
	}
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return nil, ErrInvalidClaims
	}
	return &Principal{ID: userID, Role: c.Role, PharmacyID: pharmacyID}, nil
}
