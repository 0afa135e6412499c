package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arix/server/internal/model"
	apperrors "github.com/arix/server/internal/utils/errors"
)

// Envelope builds the failure body for err.
// Only *AppError messages below 500 reach the client; everything else is generic.
func Envelope(err error) (int, model.ErrorResponse) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, model.ErrorResponse{
			Message: apperrors.GenericMessage,
			Code:    "INTERNAL_ERROR",
		}
	}

	status := appErr.StatusCode
	if status == 0 {
		status = http.StatusInternalServerError
	}
	message := appErr.Message
	if status == http.StatusInternalServerError || message == "" {
		message = apperrors.GenericMessage
	}
	return status, model.ErrorResponse{
		Message:   message,
		Code:      appErr.Code,
		Upgrade:   appErr.Upgrade,
		Retryable: appErr.Retryable,
	}
}

// Error writes the failure envelope and records err on the context for the access log.
func Error(c *gin.Context, err error) {
	_ = c.Error(err)
	status, body := Envelope(err)
	c.JSON(status, body)
}

// Abort writes the failure envelope and stops the handler chain.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	status, body := Envelope(err)
	c.AbortWithStatusJSON(status, body)
}

// Message writes a success envelope with a message.
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, model.MessageResponse{Success: true, Message: message})
}
