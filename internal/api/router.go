package api

import (
	"path"

	"go-onboard/internal/auth"
	"go-onboard/internal/config"
	"go-onboard/internal/db"
	"go-onboard/internal/llm"
	"go-onboard/internal/onboarding"
	"go-onboard/internal/profile"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func SetupRouter(cfg *config.Config, rdb *redis.Client, completer llm.Completer) *gin.Engine {
	r := gin.Default()
	subpath := cfg.Server.Subpath // e.g. "/onboard" or any custom path, always starts with '/'

	sessions := onboarding.NewSessionManager()
	profiles := profile.NewRepository(db.DB, cfg.Onboarding.StorageCompletePercent)

	// API routes
	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg))

		// Setup: only if no users
		group.POST("/setup", SetupHandler())

		// Auth
		group.POST("/auth/login", LoginHandler(cfg, rdb))
		group.POST("/auth/logout", auth.AuthMiddleware(cfg, rdb), LogoutHandler(rdb))
		group.GET("/auth/me", auth.AuthMiddleware(cfg, rdb), MeHandler())

		// --- Onboarding dialogue ---
		group.POST("/onboarding/start", auth.AuthMiddleware(cfg, rdb), StartOnboardingHandler(cfg, sessions, profiles, completer))
		group.POST("/onboarding/:id/answer", auth.AuthMiddleware(cfg, rdb), AnswerHandler(sessions, profiles))
		group.GET("/onboarding/:id", auth.AuthMiddleware(cfg, rdb), ProgressHandler(sessions))
		group.DELETE("/onboarding/:id", auth.AuthMiddleware(cfg, rdb), AbandonHandler(sessions, profiles))
		group.GET("/onboarding/profile", auth.AuthMiddleware(cfg, rdb), StoredProfileHandler(profiles))

		// --- Streaming WebSocket dialogue ---
		group.GET(path.Join("/ws", "onboarding"), WSOnboardingHandler(cfg, sessions, profiles, completer))

		// --- Online users count ---
		group.GET("/users/online", OnlineUserCountHandler(rdb))
	}
	return r
}
