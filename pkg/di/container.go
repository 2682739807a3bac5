package di

import (
	"sellerlift/backend/internal/bloggen"
	"sellerlift/backend/internal/repository"
	"sellerlift/backend/internal/service"
	"sellerlift/backend/pkg/cache"
	"sellerlift/backend/pkg/config"
	"sellerlift/backend/pkg/jwt"
	"sellerlift/backend/pkg/logger"
	"sellerlift/backend/shared/observability"
	"sellerlift/backend/shared/redis"

	"gorm.io/gorm"
)

// Container holds all the dependencies for the application
type Container struct {
	DB      *gorm.DB
	Redis   *redis.Client
	Logger  *logger.Logger
	Metrics *observability.Metrics
	Cache   *cache.Cache

	JWTService *jwt.Service

	MessageRepo repository.MessageRepository
	StateRepo   repository.StateRepository

	MessageService      *service.MessageService
	PresenceService     *service.PresenceService
	DirectoryService    *service.DirectoryService
	ConversationService *service.ConversationService

	UserService     *service.UserService
	CustomerService *service.CustomerService
	LeadService     *service.LeadService
	PackageService  *service.PackageService
	SiteService     *service.SiteService
	BlogService     *service.BlogService
	BoosterService  *service.BoosterService
}

// New wires the dependency graph from configuration. The Redis client
// is shared between the presence lease and the change feed; the logger
// is the process-wide instance built in main.
func New(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logger.Logger) *Container {
	metrics := observability.NewMetrics()
	appCache := cache.NewCache()

	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Expiry)

	messageRepo := repository.NewGormMessageRepository(db)
	stateRepo := repository.NewGormStateRepository(db)

	messageService := service.NewMessageService(messageRepo, redisClient, log, metrics, service.MessageServiceOptions{
		OperatorID:    cfg.Chat.OperatorID,
		MaxBodyLength: cfg.Chat.MaxBodyLength,
		RecentWindow:  cfg.Chat.RecentWindow,
	})
	presenceService := service.NewPresenceService(redisClient, redisClient, log, cfg.Chat.PresenceTTL)

	userService := service.NewUserService(db, jwtService, log)

	directoryService := service.NewDirectoryService(
		messageRepo,
		stateRepo,
		userService,
		appCache,
		log,
		metrics,
		cfg.Chat.RecentWindow,
		cfg.Chat.DirectoryPollInterval,
	)
	conversationService := service.NewConversationService(stateRepo, messageService, directoryService, log)

	generator := bloggen.NewClient(cfg.Services.BlogGeneratorURL, log)

	return &Container{
		DB:                  db,
		Redis:               redisClient,
		Logger:              log,
		Metrics:             metrics,
		Cache:               appCache,
		JWTService:          jwtService,
		MessageRepo:         messageRepo,
		StateRepo:           stateRepo,
		MessageService:      messageService,
		PresenceService:     presenceService,
		DirectoryService:    directoryService,
		ConversationService: conversationService,
		UserService:         userService,
		CustomerService:     service.NewCustomerService(db, log),
		LeadService:         service.NewLeadService(db, log),
		PackageService:      service.NewPackageService(db, log),
		SiteService:         service.NewSiteService(db, appCache, log),
		BlogService:         service.NewBlogService(db, generator, log),
		BoosterService:      service.NewBoosterService(db, log, cfg.Booster.DefaultInterval, cfg.Booster.MaxTemplates),
	}
}
