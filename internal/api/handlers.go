package api

import (
	"net/http"

	"go-onboard/internal/config"

	"github.com/gin-gonic/gin"
)

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GET /config
func configHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only return non-sensitive config fields
		c.JSON(http.StatusOK, gin.H{
			"server": gin.H{
				"host":    cfg.Server.Host,
				"port":    cfg.Server.Port,
				"subpath": cfg.Server.Subpath,
			},
			"oracle": gin.H{
				"model": cfg.Oracle.Model,
			},
			"onboarding": gin.H{
				"completion_threshold":     cfg.Onboarding.CompletionThreshold,
				"follow_up_rate":           cfg.Onboarding.FollowUpRate,
				"storage_complete_percent": cfg.Onboarding.StorageCompletePercent,
			},
		})
	}
}
