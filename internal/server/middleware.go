package server

import (
	"time"

	"auction-storefront/internal/biddingerrors"
	"auction-storefront/internal/models"
	"auction-storefront/services/common"
	"auction-storefront/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// Authenticator resolves a bearer token to the signed-in user
type Authenticator interface {
	CurrentUser(token string) (models.User, error)
}

// RequestLoggerMiddleware logs incoming requests with timing and tags each
// one with a request ID, reusing the caller's when present.
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	requestID := c.GetHeader(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header(requestIDHeader, requestID)

	c.Next() // process request

	fields := map[string]any{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
		"request_id": requestID,
	}
	if user, ok := common.CurrentUser(c); ok {
		fields["user_id"] = user.UserID
	}
	utils.Info("HTTP Request", fields)
}

// AuthMiddleware attaches the signed-in user when a valid token is sent.
// Requests without one continue anonymously; a bad token is rejected.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := common.BearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		user, err := auth.CurrentUser(token)
		if err != nil {
			common.RespondError(c, "AuthMiddleware", err, map[string]any{"path": c.Request.URL.Path})
			c.Abort()
			return
		}
		common.SetUser(c, user)
		c.Next()
	}
}

// RequireAuth rejects requests without a signed-in user
func RequireAuth(c *gin.Context) {
	if _, ok := common.CurrentUser(c); !ok {
		common.RespondError(c, "RequireAuth", biddingerrors.ErrUnauthorized, map[string]any{"path": c.Request.URL.Path})
		c.Abort()
		return
	}
	c.Next()
}

// RequireRole only lets users with one of roles through
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := common.CurrentUser(c)
		if !ok {
			common.RespondError(c, "RequireRole", biddingerrors.ErrUnauthorized, map[string]any{"path": c.Request.URL.Path})
			c.Abort()
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		common.RespondError(c, "RequireRole", biddingerrors.ErrForbidden, map[string]any{
			"path":    c.Request.URL.Path,
			"user_id": user.UserID,
			"role":    string(user.Role),
		})
		c.Abort()
	}
}
