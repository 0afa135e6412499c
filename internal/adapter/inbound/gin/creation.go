package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/inbound"
	apperrors "github.com/arix/server/internal/utils/errors"
	"github.com/arix/server/internal/utils/middleware"
)

// creationHandler implements inbound.CreationHttpPort.
type creationHandler struct {
	domain inbound.CreationDomain
}

// NewCreationHandler creates a new creation HTTP handler.
func NewCreationHandler(domain inbound.CreationDomain) inbound.CreationHttpPort {
	return &creationHandler{domain: domain}
}

// RegisterCreationRoutes registers the creation routes under /user.
func RegisterCreationRoutes(r *gin.RouterGroup, h inbound.CreationHttpPort) {
	user := r.Group("/user")
	{
		user.GET("/get-user-creations", h.GetUserCreations)
		user.GET("/get-published-creations", h.GetPublishedCreations)
		user.POST("/toggle-like", h.ToggleLike)
	}
}

// GetUserCreations lists the caller's creations, newest first.
//
//	@Summary	List own creations
//	@Tags		User
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	model.CreationsResponse
//	@Router		/user/get-user-creations [get]
func (h *creationHandler) GetUserCreations(c *gin.Context) {
	creations, err := h.domain.ListByOwner(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		handleError(c, err)
		return
	}
	if creations == nil {
		creations = []*model.Creation{}
	}
	c.JSON(http.StatusOK, model.CreationsResponse{Success: true, Creations: creations})
}

// GetPublishedCreations lists the community feed.
//
//	@Summary	List published creations
//	@Tags		User
//	@Security	BearerAuth
//	@Produce	json
//	@Success	200	{object}	model.PublishedCreationsResponse
//	@Router		/user/get-published-creations [get]
func (h *creationHandler) GetPublishedCreations(c *gin.Context) {
	creations, err := h.domain.ListPublished(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	if creations == nil {
		creations = []*model.PublishedCreation{}
	}
	c.JSON(http.StatusOK, model.PublishedCreationsResponse{Success: true, Creations: creations})
}

// ToggleLike likes or unlikes a creation for the caller.
//
//	@Summary	Toggle like
//	@Tags		User
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		model.ToggleLikeRequest	true	"Creation id"
//	@Success	200		{object}	model.MessageResponse
//	@Failure	404		{object}	model.ErrorResponse
//	@Router		/user/toggle-like [post]
func (h *creationHandler) ToggleLike(c *gin.Context) {
	var req model.ToggleLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperrors.BadRequest("invalid request body"))
		return
	}

	result, err := h.domain.ToggleLike(c.Request.Context(), middleware.GetUserID(c), req.ID)
	if err != nil {
		handleError(c, err)
		return
	}

	message := "Creation Liked"
	if result == model.LikeResultUnliked {
		message = "Creation Unliked"
	}
	c.JSON(http.StatusOK, model.MessageResponse{Success: true, Message: message})
}
