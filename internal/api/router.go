package api

import (
	"github.com/gin-gonic/gin"
	"github.com/hausmate/hausmate/internal/api/handler"
	"github.com/hausmate/hausmate/internal/api/middleware"
	"github.com/hausmate/hausmate/internal/config"
	"github.com/hausmate/hausmate/internal/service"
)

// Services bundles the service-layer dependencies the router wires up.
type Services struct {
	Discovery    *service.DiscoveryService
	Interactions *service.InteractionService
	Assembler    *service.ProfileAssembler
	Interests    service.InterestStore
	Vocabulary   *service.VocabularyCache
}

// SetupRouter configures the Gin router with all routes
func SetupRouter(services Services, cfg *config.ServerConfig) *gin.Engine {
	// Set Gin mode
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	// Add middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		AllowAllOrigins: cfg.CORS.AllowAllOrigins,
	}))

	// Create handlers
	healthHandler := handler.NewHealthHandler()
	discoveryHandler := handler.NewDiscoveryHandler(services.Discovery)
	interactionHandler := handler.NewInteractionHandler(services.Interactions)
	profileHandler := handler.NewProfileHandler(services.Assembler)
	interestHandler := handler.NewInterestHandler(services.Interests, services.Vocabulary)

	// Health check
	r.GET("/health", healthHandler.Health)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// Discovery
		v1.POST("/discovery/profiles", discoveryHandler.Discover)

		// Interactions
		v1.POST("/interactions", interactionHandler.Record)

		// Profiles
		v1.POST("/profile", profileHandler.Get)

		// Interests
		v1.GET("/interests", interestHandler.List)

		// Admin
		v1.POST("/admin/interests/refresh", interestHandler.Refresh)
	}

	return r
}
