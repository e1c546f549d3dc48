package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/beezio/marketplace/internal/infrastructure/auth"
	"github.com/beezio/marketplace/internal/infrastructure/logger"
	"github.com/beezio/marketplace/internal/interfaces/http/dto"
)

// Identity context keys and headers
const (
	IdentityKey     = "caller_identity"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
	UserEmailHeader = "X-User-Email"
	UserNameHeader  = "X-User-Name"
)

// CallerIdentity is who sent the request, as far as the marketplace cares.
// Authentication happens upstream; this only reads the result.
type CallerIdentity struct {
	Identity  string
	Name      string
	ProfileID *uuid.UUID
}

// IdentityConfig holds configuration for the identity middleware
type IdentityConfig struct {
	// Verifier checks bearer tokens; nil ignores the Authorization header
	Verifier *auth.TokenVerifier
	// AllowHeaderIdentity trusts X-User-Email when no token is sent (development only)
	AllowHeaderIdentity bool
	Logger              *zap.Logger
}

// IdentityMiddleware reads the caller identity from a bearer token, or from
// X-User-Email when allowed. A request without either continues anonymously;
// operations that need an owner report that themselves. A token that is sent
// but invalid is rejected with 401.
func IdentityMiddleware(cfg IdentityConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header != "" && cfg.Verifier != nil {
			if !strings.HasPrefix(header, BearerPrefix) {
				rejectIdentity(c, dto.ErrCodeTokenInvalid, "Invalid authorization header format")
				return
			}
			claims, err := cfg.Verifier.Verify(strings.TrimPrefix(header, BearerPrefix))
			if err != nil {
				log.Debug("Bearer token rejected", zap.String("path", c.Request.URL.Path), zap.Error(err))
				code := dto.ErrCodeTokenInvalid
				if errors.Is(err, auth.ErrExpiredToken) {
					code = dto.ErrCodeTokenExpired
				}
				rejectIdentity(c, code, err.Error())
				return
			}
			setIdentity(c, &CallerIdentity{
				Identity:  claims.Identity(),
				Name:      claims.Name,
				ProfileID: claims.ProfileID(),
			})
			c.Next()
			return
		}

		if cfg.AllowHeaderIdentity {
			if email := strings.TrimSpace(c.GetHeader(UserEmailHeader)); email != "" {
				setIdentity(c, &CallerIdentity{
					Identity: email,
					Name:     strings.TrimSpace(c.GetHeader(UserNameHeader)),
				})
			}
		}
		c.Next()
	}
}

// setIdentity stores id on the gin context and tags the request logger with it
func setIdentity(c *gin.Context, id *CallerIdentity) {
	c.Set(IdentityKey, id)
	ctx, reqLogger := logger.WithCaller(c.Request.Context(), logger.FromContext(c.Request.Context()), id.Identity)
	c.Request = c.Request.WithContext(ctx)
	c.Set("logger", reqLogger)
}

func rejectIdentity(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetIdentity returns the caller identity, or nil for an anonymous request
func GetIdentity(c *gin.Context) *CallerIdentity {
	if v, ok := c.Get(IdentityKey); ok {
		if id, ok := v.(*CallerIdentity); ok {
			return id
		}
	}
	return nil
}
