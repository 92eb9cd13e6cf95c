package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, adminAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS for the web client
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, adminAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, adminAccessKey string) {
	// Public read endpoints
	r.GET("/feed", handler.GetFeed)
	r.GET("/content/:id", handler.GetContentByID)

	// Community write endpoints
	r.POST("/submit", handler.SubmitContent)
	r.POST("/vote", handler.Vote)
	r.POST("/comments", handler.CreateComment)
	r.POST("/comment-vote", handler.CommentVote)

	r.GET("/health", handler.GetHealth)

	// Admin endpoints (conditionally enabled with authentication)
	if adminAccessKey != "" {
		admin := r.Group("/api/admin")
		admin.Use(authMiddleware(adminAccessKey))
		{
			admin.GET("/content", handler.AdminListContent)
			admin.PATCH("/content", handler.AdminModerateContent)
			admin.DELETE("/content", handler.AdminDeleteContent)
			admin.GET("/stats", handler.AdminStats)
			admin.POST("/crawl", handler.AdminTriggerCrawl)
		}
		slog.Info("Admin endpoints enabled with authentication")
	} else {
		slog.Info("Admin endpoints disabled (ADMIN_ACCESS_KEY not set)")
	}

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware guards admin endpoints with a shared access key
func authMiddleware(adminAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != adminAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
