package gin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arix/server/internal/domain/generation"
	"github.com/arix/server/internal/model"
	"github.com/arix/server/internal/port/inbound"
	apperrors "github.com/arix/server/internal/utils/errors"
	"github.com/arix/server/internal/utils/middleware"
)

// generationHandler implements inbound.GenerationHttpPort.
type generationHandler struct {
	domain inbound.GenerationDomain
}

// NewGenerationHandler creates a new generation HTTP handler.
func NewGenerationHandler(domain inbound.GenerationDomain) inbound.GenerationHttpPort {
	return &generationHandler{domain: domain}
}

// RegisterGenerationRoutes registers the /ai routes on an authenticated group.
func RegisterGenerationRoutes(r *gin.RouterGroup, h inbound.GenerationHttpPort, mw ...gin.HandlerFunc) {
	ai := r.Group("/ai", mw...)
	{
		ai.POST("/generate-article", h.GenerateArticle)
		ai.POST("/generate-blog-title", h.GenerateBlogTitle)
		ai.POST("/generate-image", h.GenerateImage)
		ai.POST("/remove-image-background", h.RemoveImageBackground)
	}
}

// GenerateArticle writes an article.
//
//	@Summary	Generate article
//	@Tags		AI
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		model.ArticleRequest	true	"Prompt and length"
//	@Success	200		{object}	model.ContentResponse
//	@Failure	400		{object}	model.ErrorResponse
//	@Failure	402		{object}	model.ErrorResponse
//	@Failure	502		{object}	model.ErrorResponse
//	@Router		/ai/generate-article [post]
func (h *generationHandler) GenerateArticle(c *gin.Context) {
	var req model.ArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperrors.BadRequest("invalid request body"))
		return
	}

	content, err := h.domain.GenerateArticle(c.Request.Context(), middleware.GetIdentity(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ContentResponse{Success: true, Content: content})
}

// GenerateBlogTitle suggests blog titles.
//
//	@Summary	Generate blog titles
//	@Tags		AI
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		model.BlogTitleRequest	true	"Prompt"
//	@Success	200		{object}	model.ContentResponse
//	@Failure	402		{object}	model.ErrorResponse
//	@Router		/ai/generate-blog-title [post]
func (h *generationHandler) GenerateBlogTitle(c *gin.Context) {
	var req model.BlogTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperrors.BadRequest("invalid request body"))
		return
	}

	content, err := h.domain.GenerateBlogTitle(c.Request.Context(), middleware.GetIdentity(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ContentResponse{Success: true, Content: content})
}

// GenerateImage renders an image from a prompt.
//
//	@Summary	Generate image
//	@Tags		AI
//	@Security	BearerAuth
//	@Accept		json
//	@Produce	json
//	@Param		request	body		model.ImageRequest	true	"Prompt and visibility"
//	@Success	200		{object}	model.ImageResponse
//	@Failure	402		{object}	model.ErrorResponse
//	@Failure	504		{object}	model.ErrorResponse
//	@Router		/ai/generate-image [post]
func (h *generationHandler) GenerateImage(c *gin.Context) {
	var req model.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, apperrors.BadRequest("invalid request body"))
		return
	}

	url, err := h.domain.GenerateImage(c.Request.Context(), middleware.GetIdentity(c), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ImageResponse{Success: true, SecureURL: url})
}

// RemoveImageBackground strips the background of an uploaded image.
//
//	@Summary	Remove image background
//	@Tags		AI
//	@Security	BearerAuth
//	@Accept		multipart/form-data
//	@Produce	json
//	@Param		image	formData	file	true	"Image to process"
//	@Success	200		{object}	model.ImageResponse
//	@Failure	400		{object}	model.ErrorResponse
//	@Failure	402		{object}	model.ErrorResponse
//	@Router		/ai/remove-image-background [post]
func (h *generationHandler) RemoveImageBackground(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			handleError(c, generation.ErrImageRequired)
			return
		}
		handleError(c, apperrors.BadRequest("invalid multipart upload"))
		return
	}

	file, err := header.Open()
	if err != nil {
		handleError(c, apperrors.BadRequest("unreadable upload"))
		return
	}
	defer file.Close()

	url, err := h.domain.RemoveBackground(c.Request.Context(), middleware.GetIdentity(c), &inbound.RemoveBackgroundInput{
		File:     file,
		Filename: header.Filename,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.ImageResponse{Success: true, SecureURL: url})
}
