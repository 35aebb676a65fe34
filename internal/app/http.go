package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewHTTPHandler serves the Telegram webhook and a health endpoint.
func NewHTTPHandler(webhook http.Handler, env string) http.Handler {
	if env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.POST(webhookPath, gin.WrapH(webhook))
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}
