package router

import (
	"sellerlift/backend/internal/api"
	"sellerlift/backend/internal/ws"
	"sellerlift/backend/pkg/config"
	"sellerlift/backend/pkg/di"
	"sellerlift/backend/pkg/errors"
	"sellerlift/backend/pkg/jwt"
	"sellerlift/backend/pkg/logger"
	"sellerlift/backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Hub       *ws.Hub
	Config    *config.Config
}

// New creates a new router around the container's dependency graph
func New(container *di.Container, cfg *config.Config) *Router {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(middleware.RequestIDMiddleware())
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())

	rlOptions := middleware.DefaultRateLimiterOptions()
	rlOptions.Limit = rate.Limit(cfg.Security.RateLimit)
	rlOptions.Burst = cfg.Security.RateLimitBurst
	rateLimiter := middleware.NewRateLimiter(container.Logger, rlOptions)
	engine.Use(rateLimiter.Middleware())

	hub := ws.NewHub(
		container.MessageService,
		container.PresenceService,
		container.Logger,
		container.Metrics,
		ws.HubOptions{
			OperatorID:  cfg.Chat.OperatorID,
			WelcomeBody: cfg.Chat.WelcomeMessage,
		},
	)
	go hub.Run()

	return &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Hub:       hub,
		Config:    cfg,
	}
}

// SetupRoutes registers all application routes
func (r *Router) SetupRoutes() {
	r.Engine.Use(corsMiddleware(r.Config.Security.AllowedOrigins))

	jwtAuth := middleware.JWTAuthMiddleware(r.Container.JWTService, r.Logger)
	adminOnly := middleware.RequireRole(jwt.RoleAdmin)

	authHandler := api.NewAuthHandler(r.Container.UserService)
	chatHandler := api.NewChatHandler(
		r.Container.MessageService,
		r.Container.PresenceService,
		r.Container.DirectoryService,
		r.Container.ConversationService,
		r.Hub,
		r.Config.Chat.OperatorID,
	)
	customerHandler := api.NewCustomerHandler(r.Container.CustomerService)
	leadHandler := api.NewLeadHandler(r.Container.LeadService)
	packageHandler := api.NewPackageHandler(r.Container.PackageService)
	siteHandler := api.NewSiteHandler(r.Container.SiteService)
	blogHandler := api.NewBlogHandler(r.Container.BlogService)
	boosterHandler := api.NewBoosterHandler(r.Container.BoosterService)

	r.setupHealthRoutes()

	v1 := r.Engine.Group("/api/v1")

	// Public routes: the marketing site and the visitor chat widget
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", jwtAuth, authHandler.Me)
	}

	v1.GET("/packages", packageHandler.List)
	v1.GET("/packages/:id", packageHandler.Get)
	v1.POST("/leads", leadHandler.Capture)
	v1.GET("/site/content", siteHandler.GetContent)
	v1.GET("/site/settings", siteHandler.GetPublicSettings)
	v1.GET("/blog", blogHandler.ListPublic)
	v1.GET("/blog/:slug", blogHandler.GetBySlug)
	v1.GET("/booster/next", boosterHandler.Next)

	// Chat endpoints open to visitors: the conversation key is the
	// visitor's email, no account required. Auth is optional so the
	// operator panel's polling fallback is recognized as the operator.
	chat := v1.Group("/chat")
	chat.Use(middleware.OptionalJWTAuthMiddleware(r.Container.JWTService, r.Logger))
	{
		chat.POST("/messages", chatHandler.SendMessage)
		chat.GET("/messages/:conversationId", chatHandler.GetMessages)
		chat.GET("/presence/:conversationId", chatHandler.GetPresence)
		chat.POST("/presence/:conversationId/heartbeat", chatHandler.Heartbeat)
	}

	// Operator routes, all behind admin auth
	admin := v1.Group("/admin")
	admin.Use(jwtAuth, adminOnly)
	{
		admin.GET("/stats", customerHandler.Stats)
		admin.GET("/users", authHandler.ListUsers)
		admin.DELETE("/users/:id", authHandler.DeleteUser)

		admin.GET("/customers", customerHandler.List)
		admin.GET("/customers/:id", customerHandler.Get)
		admin.POST("/customers", customerHandler.Create)
		admin.PUT("/customers/:id", customerHandler.Update)
		admin.DELETE("/customers/:id", customerHandler.Delete)

		admin.GET("/leads", leadHandler.List)
		admin.DELETE("/leads/:id", leadHandler.Delete)

		admin.POST("/packages", packageHandler.Create)
		admin.PUT("/packages/:id", packageHandler.Update)
		admin.DELETE("/packages/:id", packageHandler.Delete)

		admin.PUT("/site/content", siteHandler.UpdateContent)
		admin.GET("/site/settings", siteHandler.GetSettings)
		admin.PUT("/site/settings", siteHandler.UpdateSettings)

		admin.GET("/blog", blogHandler.ListAll)
		admin.POST("/blog", blogHandler.Create)
		admin.PUT("/blog/:id", blogHandler.Update)
		admin.DELETE("/blog/:id", blogHandler.Delete)
		admin.POST("/blog/generate", blogHandler.Generate)

		admin.GET("/booster", boosterHandler.GetSettings)
		admin.PUT("/booster", boosterHandler.UpdateSettings)

		admin.GET("/chat/directory", chatHandler.GetDirectory)
		admin.POST("/chat/conversations/:conversationId/archive", chatHandler.Archive)
		admin.POST("/chat/conversations/:conversationId/unarchive", chatHandler.Unarchive)
		admin.DELETE("/chat/conversations/:conversationId", chatHandler.Delete)
	}

	// WebSocket chat sessions. Visitors and sellers connect directly;
	// the operator dashboard connects with role=operator behind auth.
	r.Engine.GET("/ws/chat", func(c *gin.Context) {
		ws.ServeWs(r.Hub, c)
	})
	r.Engine.GET("/ws/operator", jwtAuth, adminOnly, func(c *gin.Context) {
		c.Request.URL.RawQuery = c.Request.URL.RawQuery + "&role=operator"
		ws.ServeWs(r.Hub, c)
	})
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin == "*" {
			allowAll = true
		}
		allowed[origin] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case allowAll:
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		case allowed[origin]:
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Accept-Encoding, X-CSRF-Token, Authorization, Origin, Upgrade, Connection, Cache-Control")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Upgrade, Connection")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
