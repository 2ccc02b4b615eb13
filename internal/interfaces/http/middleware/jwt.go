package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pharmaops/backend/internal/domain/shared"
	"github.com/pharmaops/backend/internal/infrastructure/auth"
	"github.com/pharmaops/backend/internal/infrastructure/logger"
	"github.com/pharmaops/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Principal context keys
const (
	PrincipalKey     = "principal"
	PharmacyIDKey    = "pharmacy_id"
	UserIDKey        = "user_id"
	AuthHeaderKey    = "Authorization"
	BearerPrefix     = "Bearer "
	PharmacyIDHeader = "X-Pharmacy-ID"
	UserIDHeader     = "X-User-ID"
)

// TokenValidator turns a bearer token into the calling principal
type TokenValidator interface {
	ValidateToken(token string) (*auth.Principal, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Validator TokenValidator
	// SkipPaths are served without a principal
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuthMiddleware requires a valid bearer token on every request except
// the skip paths and stores its principal in the context
func JWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing token")
			return
		}

		principal, err := cfg.Validator.ValidateToken(token)
		if err != nil {
			abortUnauthorized(c, log, err, "Token validation failed")
			return
		}
		setPrincipal(c, principal)
		c.Next()
	}
}

// HeaderPrincipalMiddleware builds the principal from the X-Pharmacy-ID and
// X-User-ID headers. For local runs without token issuance only.
func HeaderPrincipalMiddleware(skipPaths ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		pharmacyID, err := uuid.Parse(strings.TrimSpace(c.GetHeader(PharmacyIDHeader)))
		if err != nil || pharmacyID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				shared.CodeValidation, "missing or invalid "+PharmacyIDHeader+" header", GetRequestID(c)))
			return
		}
		p := &auth.Principal{PharmacyID: pharmacyID, Role: "dev"}
		if userID, err := uuid.Parse(c.GetHeader(UserIDHeader)); err == nil {
			p.ID = userID
		}
		setPrincipal(c, p)
		c.Next()
	}
}

func setPrincipal(c *gin.Context, p *auth.Principal) {
	c.Set(PrincipalKey, p)
	c.Set(PharmacyIDKey, p.PharmacyID.String())
	c.Set(UserIDKey, p.ID.String())

	ctx := logger.WithPharmacyID(c.Request.Context(), p.PharmacyID.String())
	ctx = logger.WithUserID(ctx, p.ID.String())
	c.Request = c.Request.WithContext(ctx)
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("JWT authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code, msg := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, msg = dto.ErrCodeTokenInvalid, "Token is not yet valid"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrMissingPharmacyID), errors.Is(err, auth.ErrMissingUserID):
		code, msg = dto.ErrCodeTokenInvalid, "Invalid token"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
}

// GetPrincipal returns the principal stored by the auth middleware
func GetPrincipal(c *gin.Context) (*auth.Principal, bool) {
	v, ok := c.Get(PrincipalKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*auth.Principal)
	return p, ok && p != nil
}

// GetPharmacyID returns the calling pharmacy, or uuid.Nil when no
// principal is present
func GetPharmacyID(c *gin.Context) uuid.UUID {
	if p, ok := GetPrincipal(c); ok {
		return p.PharmacyID
	}
	return uuid.Nil
}
