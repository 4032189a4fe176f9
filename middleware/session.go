package middleware

import (
	"context"
	"net/http"

	"food-order/logger"
	"food-order/models"

	"github.com/gin-gonic/gin"
)

type SessionChecker interface {
	RequireSessionUser(ctx context.Context, userID int) error
}

// SessionMiddleware lets a request through only when its token belongs to
// the user signed in on this device. Must run after AuthMiddleware.
func SessionMiddleware(sessions SessionChecker, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
				Success: false,
				Message: "Authentication required",
				Error:   string(models.CodeUnauthorized),
			})
			return
		}

		err := sessions.RequireSessionUser(c.Request.Context(), userID)
		if err == nil {
			c.Next()
			return
		}

		appErr, ok := models.AsAppError(err)
		if !ok {
			appErr = models.WrapAppError(models.CodeInternal, err, "Internal server error")
		}
		if appErr.Code != models.CodeUnauthorized {
			log.Error(c.Request.Context(), "session check failed", err)
		}
		c.AbortWithStatusJSON(appErr.Code.HTTPStatus(), models.ErrorResponse{
			Success: false,
			Message: appErr.Message,
			Error:   string(appErr.Code),
		})
	}
}
