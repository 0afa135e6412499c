package gin

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arix/server/internal/domain/creation"
	"github.com/arix/server/internal/domain/entitlement"
	"github.com/arix/server/internal/domain/generation"
	"github.com/arix/server/internal/domain/payment"
	apperrors "github.com/arix/server/internal/utils/errors"
	"github.com/arix/server/internal/utils/response"
)

// handleError maps domain errors to the failure envelope.
func handleError(c *gin.Context, err error) {
	response.Error(c, toAppError(err))
}

func toAppError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var denied *entitlement.DeniedError
	if errors.As(err, &denied) {
		return apperrors.UpgradeRequired(denialMessage(denied.Decision))
	}

	switch {
	case errors.Is(err, entitlement.ErrLedgerUnavailable):
		return apperrors.IdentityUnavailable("usage limits are temporarily unavailable, please retry", err)

	case errors.Is(err, generation.ErrPromptRequired):
		return apperrors.BadRequest("Prompt is required")
	case errors.Is(err, generation.ErrImageRequired):
		return apperrors.BadRequest("Image file is required")
	case errors.Is(err, generation.ErrUnsupportedMedia):
		return apperrors.BadRequest("Uploaded file must be an image")
	case errors.Is(err, generation.ErrUploadTooLarge):
		return apperrors.BadRequest("Uploaded file is too large")
	case errors.Is(err, generation.ErrInputRejected):
		return apperrors.BadRequest("The provider rejected this input")
	case errors.Is(err, generation.ErrProviderTimeout):
		return apperrors.ProviderTimeout("", err)
	case errors.Is(err, generation.ErrProviderUnavailable):
		return apperrors.IdentityUnavailable("generation provider is temporarily unavailable, please retry", err)
	case errors.Is(err, generation.ErrProviderFailed):
		return apperrors.ProviderFailed("", err)
	case errors.Is(err, generation.ErrStorageFailed):
		return apperrors.ProviderFailed("failed to store generated image", err)

	case errors.Is(err, creation.ErrCreationIDRequired):
		return apperrors.BadRequest("Creation id is required")
	case errors.Is(err, creation.ErrCreationNotFound):
		return apperrors.NotFound("creation")

	case errors.Is(err, payment.ErrPaymentFailed):
		return apperrors.ProviderFailed("Failed to process test payment", err)
	}

	return apperrors.Internal("unhandled error", err)
}

func denialMessage(d entitlement.Decision) string {
	return strings.TrimSpace(d.Reason + " " + d.UpgradePrompt)
}
