package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/inbound"
	"github.com/arix/server/internal/utils/middleware"
	"github.com/arix/server/internal/utils/response"
)

// accountHandler implements inbound.AccountHttpPort.
type accountHandler struct {
	entitlement inbound.EntitlementDomain
	payment     inbound.PaymentDomain
}

// NewAccountHandler creates a new account HTTP handler.
func NewAccountHandler(entitlement inbound.EntitlementDomain, payment inbound.PaymentDomain) inbound.AccountHttpPort {
	return &accountHandler{entitlement: entitlement, payment: payment}
}

// RegisterAccountRoutes registers usage and payment routes.
func RegisterAccountRoutes(r *gin.RouterGroup, h inbound.AccountHttpPort) {
	r.GET("/user/usage", h.GetUsage)
	r.POST("/payment/test-payment", h.TestPayment)
}

// GetUsage reports the caller's quota counters.
//
//	@Summary	Quota usage
//	@Tags		User
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	model.UsageResponse
//	@Failure	503	{object}	model.ErrorResponse
//	@Router		/user/usage [get]
func (h *accountHandler) GetUsage(c *gin.Context) {
	usage, err := h.entitlement.Usage(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.UsageResponse{Success: true, Plan: usage.Plan, Quotas: usage.Quotas})
}

// TestPayment upgrades the caller to premium with a test card.
//
//	@Summary	Process test payment
//	@Tags		Payment
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	model.MessageResponse
//	@Failure	502	{object}	model.ErrorResponse
//	@Router		/payment/test-payment [post]
func (h *accountHandler) TestPayment(c *gin.Context) {
	if err := h.payment.ProcessTestPayment(c.Request.Context(), middleware.GetIdentity(c)); err != nil {
		handleError(c, err)
		return
	}
	response.Message(c, "Test payment processed successfully")
}
