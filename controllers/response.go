package controllers

import (
	"errors"
	"net/http"
	"strings"

	"food-order/logger"
	"food-order/models"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

func respondOK(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// respondError writes the error envelope with the status mapped from the
// AppError code. Anything that is not an AppError is reported as internal.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	appErr, ok := models.AsAppError(err)
	if !ok {
		appErr = models.WrapAppError(models.CodeInternal, err, "Internal server error")
	}

	status := appErr.Code.HTTPStatus()
	if status >= http.StatusInternalServerError || appErr.Code == models.CodePersistence || appErr.Code == models.CodeDependency {
		log.Error(c.Request.Context(), appErr.Message, err)
	}
	_ = c.Error(err)

	c.JSON(status, models.ErrorResponse{
		Success: false,
		Message: appErr.Message,
		Error:   string(appErr.Code),
		Details: appErr.Details,
	})
}

// respondBindError reports a request that failed gin binding, listing the
// offending fields when the validator tells us which ones.
func respondBindError(c *gin.Context, err error) {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		details := make(map[string]string, len(fieldErrs))
		for _, fe := range fieldErrs {
			details[lowerFirst(fe.Field())] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Message: "Invalid request",
			Error:   string(models.CodeValidation),
			Details: details,
		})
		return
	}

	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Success: false,
		Message: "Invalid request",
		Error:   string(models.CodeValidation),
	})
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Success: false,
		Message: "Authentication required",
		Error:   string(models.CodeUnauthorized),
	})
}
