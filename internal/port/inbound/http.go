package inbound

import "github.com/gin-gonic/gin"

// GenerationHttpPort defines the /api/ai endpoints.
type GenerationHttpPort interface {
	GenerateArticle(c *gin.Context)
	GenerateBlogTitle(c *gin.Context)
	GenerateImage(c *gin.Context)
	RemoveImageBackground(c *gin.Context)
}

// CreationHttpPort defines the creation catalog endpoints.
type CreationHttpPort interface {
	GetUserCreations(c *gin.Context)
	GetPublishedCreations(c *gin.Context)
	ToggleLike(c *gin.Context)
}

// AccountHttpPort defines usage and payment endpoints.
type AccountHttpPort interface {
	GetUsage(c *gin.Context)
	TestPayment(c *gin.Context)
}
