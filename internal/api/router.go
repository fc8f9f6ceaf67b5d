package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eddowding/abelique-matching/internal/api/handlers"
	"github.com/eddowding/abelique-matching/internal/api/ws"
	"github.com/eddowding/abelique-matching/internal/auth"
	"github.com/eddowding/abelique-matching/internal/config"
	"github.com/eddowding/abelique-matching/internal/matching"
	"github.com/eddowding/abelique-matching/internal/queue"
	"github.com/eddowding/abelique-matching/internal/storage"
)

type RouterConfig struct {
	TokenSecret string
	AdminAPIKey string
	Matching    config.MatchingConfig
	DB          *storage.PostgresStore
	Photos      *storage.PhotoStore
	Producer    *queue.Producer
	Hub         *ws.Hub
	Feed        *matching.FeedService
	Profiles    *matching.ProfileService
	Requests    *matching.RequestService
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.Photos, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 (with bearer auth)
	v1 := r.Group("/v1")
	v1.Use(auth.UserMiddleware(cfg.TokenSecret))

	// WebSocket
	v1.GET("/ws", cfg.Hub.HandleWS)

	// Groups
	groupH := handlers.NewGroupHandler(cfg.DB)
	v1.POST("/groups", groupH.Create)
	v1.GET("/groups/:id", groupH.Get)
	v1.POST("/groups/join", groupH.Join)

	// Profiles & photos
	profileH := handlers.NewProfileHandler(cfg.DB, cfg.Profiles, cfg.Photos)
	v1.GET("/groups/:id/profile", profileH.Get)
	v1.PUT("/groups/:id/profile", profileH.Update)
	v1.POST("/groups/:id/profile/photo", profileH.UploadPhoto)
	v1.GET("/groups/:id/members/:userID/photo", profileH.GetPhoto)

	// Match feed & suppressions
	matchH := handlers.NewMatchHandler(cfg.DB, cfg.Feed, cfg.Matching)
	v1.GET("/groups/:id/matches", matchH.Feed)
	v1.POST("/groups/:id/hide", matchH.Hide)
	v1.DELETE("/groups/:id/hide/:hiddenID", matchH.Unhide)

	// Match requests
	requestH := handlers.NewRequestHandler(cfg.DB, cfg.Requests, cfg.Producer)
	v1.POST("/groups/:id/requests", requestH.Send)
	v1.GET("/groups/:id/requests", requestH.ListIncoming)
	v1.POST("/groups/:id/requests/:requestID/accept", requestH.Accept)

	// Connections
	connH := handlers.NewConnectionHandler(cfg.DB)
	v1.GET("/groups/:id/connections", connH.List)

	// Admin (API key auth)
	adminH := handlers.NewAdminHandler(cfg.DB, cfg.Producer)
	admin := r.Group("/v1/admin")
	admin.Use(auth.AdminKeyMiddleware(cfg.AdminAPIKey))
	admin.POST("/backfill-embeddings", adminH.BackfillEmbeddings)

	return r
}
