package middleware

import (
	"context"
	"strings"

	"fintrack/internal/apperr"
	applog "fintrack/internal/log"
	"fintrack/internal/models"
	"fintrack/internal/util"

	"github.com/gin-gonic/gin"
)

// CurrentUserKey is the gin context key holding the authenticated *models.User.
const CurrentUserKey = "currentUser"

// UserLookup resolves a token subject to a stored user.
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// AuthMiddleware requires an "Authorization: Bearer <token>" header whose
// token resolves to an existing user, and puts that user in the context.
// Every failure is the same 401 so callers learn nothing about why.
func AuthMiddleware(tokens *util.TokenService, users UserLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		logger := applog.FromContext(ctx).WithComponent(applog.ComponentAuth)

		tokenStr := bearerToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			util.Error(c, apperr.Authentication(util.MsgInvalidCredentials))
			return
		}

		email, err := tokens.Resolve(tokenStr)
		if err != nil {
			logger.DebugContext(ctx, "token rejected", applog.FieldError, err)
			util.Error(c, apperr.Authentication(util.MsgInvalidCredentials))
			return
		}

		user, err := users.GetUserByEmail(ctx, email)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				util.Error(c, apperr.Authentication(util.MsgInvalidCredentials))
				return
			}
			util.Error(c, err)
			return
		}

		c.Set(CurrentUserKey, user)
		c.Request = c.Request.WithContext(applog.NewContext(ctx, applog.FromContext(ctx).With(applog.FieldUserID, user.ID)))
		c.Next()
	}
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}
