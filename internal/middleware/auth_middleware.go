package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/pkg/auth"
)

// Context keys set by JWTAuth
const (
	ContextAdminID = "adminID"
	ContextEmail   = "email"
	ContextClaims  = "claims"
)

// TokenAuthenticator validates an access token and returns its claims
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Claims, error)
}

// AuthMiddleware for administrator authentication
type AuthMiddleware struct {
	authenticator TokenAuthenticator
	cookieName    string
}

// NewAuthMiddleware creates a new AuthMiddleware. Tokens are read from the
// Authorization header first, then from the session cookie.
func NewAuthMiddleware(authenticator TokenAuthenticator, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{
		authenticator: authenticator,
		cookieName:    cookieName,
	}
}

// JWTAuth middleware for JWT token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := m.tokenFrom(c)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required")
			errorDetail = errorDetail.WithDetails("Authorization header or session cookie missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		claims, err := m.authenticator.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			HandleAPIError(c, err)
			c.Abort()
			return
		}

		c.Set(ContextAdminID, claims.AdminID)
		c.Set(ContextEmail, claims.Email)
		c.Set(ContextClaims, claims)

		c.Next()
	}
}

func (m *AuthMiddleware) tokenFrom(c *gin.Context) (string, error) {
	if header := c.GetHeader("Authorization"); header != "" {
		return auth.ExtractBearerToken(header)
	}
	if m.cookieName != "" {
		if cookie, err := c.Cookie(m.cookieName); err == nil && cookie != "" {
			return cookie, nil
		}
	}
	return "", auth.ErrInvalidFormat
}

// ClaimsFromContext returns the claims JWTAuth stored on the request
func ClaimsFromContext(c *gin.Context) (*auth.Claims, error) {
	value, exists := c.Get(ContextClaims)
	if !exists {
		return nil, errors.New("no authenticated administrator on request")
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil, errors.New("invalid claims type on request")
	}
	return claims, nil
}
