package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const defaultWebOrigin = "http://localhost:5173"

// CORSOptions returns the policy for the web client. Session cookies and bearer
// tokens travel with requests, so only the listed origins are reflected.
func CORSOptions(origins ...string) cors.Config {
	if len(origins) == 0 {
		origins = []string{defaultWebOrigin}
	}
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", RequestIDHeader},
		ExposeHeaders:    []string{RequestIDHeader, RateLimitLimit, RateLimitRemaining, RetryAfter},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// CORS applies CORSOptions for the given origins.
func CORS(origins ...string) gin.HandlerFunc {
	return cors.New(CORSOptions(origins...))
}
