package server

import (
	"log"
	"os"
	"strings"
	"time"

	"naffles.com/pointsbackend/internal/middleware"
	"naffles.com/pointsbackend/pkg/storage"

	adminHttp "naffles.com/pointsbackend/internal/modules/admin/delivery/http"
	adminRepo "naffles.com/pointsbackend/internal/modules/admin/repository"
	adminService "naffles.com/pointsbackend/internal/modules/admin/service"

	achievementHttp "naffles.com/pointsbackend/internal/modules/achievement/delivery/http"
	achievementRepo "naffles.com/pointsbackend/internal/modules/achievement/repository"
	achievementService "naffles.com/pointsbackend/internal/modules/achievement/service"

	communityHttp "naffles.com/pointsbackend/internal/modules/community/delivery/http"
	communityRepo "naffles.com/pointsbackend/internal/modules/community/repository"
	communityService "naffles.com/pointsbackend/internal/modules/community/service"

	jackpotHttp "naffles.com/pointsbackend/internal/modules/jackpot/delivery/http"
	jackpotRepo "naffles.com/pointsbackend/internal/modules/jackpot/repository"
	jackpotService "naffles.com/pointsbackend/internal/modules/jackpot/service"

	leaderboardHttp "naffles.com/pointsbackend/internal/modules/leaderboard/delivery/http"
	leaderboardRepo "naffles.com/pointsbackend/internal/modules/leaderboard/repository"
	leaderboardService "naffles.com/pointsbackend/internal/modules/leaderboard/service"

	pointsHttp "naffles.com/pointsbackend/internal/modules/points/delivery/http"
	pointsRepo "naffles.com/pointsbackend/internal/modules/points/repository"
	pointsService "naffles.com/pointsbackend/internal/modules/points/service"

	searchService "naffles.com/pointsbackend/internal/modules/search/service"

	userHttp "naffles.com/pointsbackend/internal/modules/user/delivery/http"
	userRepo "naffles.com/pointsbackend/internal/modules/user/repository"
	userService "naffles.com/pointsbackend/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client

	Leaderboard leaderboardService.Service
	Jackpot     jackpotService.Service
}

func NewServer(db *gorm.DB, redisClient *redis.Client) *Server {
	userRepository := userRepo.NewUserRepository(db)
	imageStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Fatalf("failed to initialize cloudinary storage: %v", err)
	}

	// Initialize Meilisearch
	meiliHost := os.Getenv("MEILISEARCH_HOST")
	if meiliHost == "" {
		meiliHost = "http://localhost:7700"
	}
	if !strings.HasPrefix(meiliHost, "http") {
		meiliHost = "http://" + meiliHost + ":7700"
	}

	meiliClient := meilisearch.New(meiliHost, meilisearch.WithAPIKey(os.Getenv("MEILI_MASTER_KEY")))
	searchSvc := searchService.NewCommunitySearchService(meiliClient)

	authSvc := userService.NewAuthService(userRepository)
	authHandler := userHttp.NewAuthHandler(authSvc)

	pointsRepository := pointsRepo.NewPointsRepository(db)
	jackpotRepository := jackpotRepo.NewJackpotRepository(db)
	achievementRepository := achievementRepo.NewAchievementRepository(db)
	leaderboardRepository := leaderboardRepo.NewLeaderboardRepository(db)
	communityRepository := communityRepo.NewCommunityRepository(db)
	partnerTokenRepository := adminRepo.NewPartnerTokenRepository(db)

	jackpotSvc := jackpotService.NewJackpotService(jackpotRepository, pointsRepository, redisClient)
	jackpotHandler := jackpotHttp.NewJackpotHandler(jackpotSvc, redisClient)

	achievementSvc := achievementService.NewAchievementService(achievementRepository, pointsRepository, imageStorage)
	achievementHandler := achievementHttp.NewAchievementHandler(achievementSvc)

	leaderboardSvc := leaderboardService.NewLeaderboardService(leaderboardRepository, userRepository, redisClient)
	leaderboardHandler := leaderboardHttp.NewLeaderboardHandler(leaderboardSvc)

	pointsSvc := pointsService.NewPointsService(pointsRepository, jackpotSvc, achievementSvc, leaderboardSvc, redisClient)
	pointsHandler := pointsHttp.NewPointsHandler(pointsSvc)

	communitySvc := communityService.NewCommunityService(communityRepository, searchSvc)
	communityHandler := communityHttp.NewCommunityHandler(communitySvc)

	adminSvc := adminService.NewAdminService(pointsSvc, userRepository, partnerTokenRepository)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	router := gin.New()

	setupCORS(router)

	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	authMiddleware := middleware.NewAuthMiddleware(userRepository)

	api := router.Group("/api")

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
	}
	api.GET("/jackpot", jackpotHandler.GetJackpot)
	api.GET("/achievements", achievementHandler.List)
	api.GET("/leaderboard", leaderboardHandler.GetLeaderboard)

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.POST("/points/award", adminHandler.AwardPoints)
			adminGroup.POST("/points/deduct", adminHandler.DeductPoints)
			adminGroup.POST("/points/bulk-credit", adminHandler.BulkCredit)
			adminGroup.POST("/transactions/:id/reverse", adminHandler.ReverseTransaction)

			adminGroup.POST("/partner-tokens", adminHandler.CreatePartnerToken)
			adminGroup.GET("/partner-tokens", adminHandler.ListPartnerTokens)
			adminGroup.PUT("/partner-tokens/:id", adminHandler.UpdatePartnerToken)
			adminGroup.DELETE("/partner-tokens/:id", adminHandler.DeletePartnerToken)

			adminGroup.POST("/achievements", achievementHandler.Create)
			adminGroup.PUT("/achievements/:id", achievementHandler.Update)
			adminGroup.POST("/achievements/:id/badge", achievementHandler.UploadBadge)
		}

		// Points routes
		protected.POST("/points/award", pointsHandler.Award)
		protected.POST("/points/deduct", pointsHandler.Deduct)
		protected.GET("/points/me", pointsHandler.GetInfo)
		protected.GET("/points/transactions", pointsHandler.ListTransactions)

		// Jackpot routes
		protected.GET("/jackpot/ws", jackpotHandler.HandleWebSocket)

		// Achievement routes
		protected.GET("/achievements/me", achievementHandler.ListUserProgress)

		// Leaderboard routes
		protected.GET("/leaderboard/me", leaderboardHandler.GetMyStanding)

		// Community routes
		protected.POST("/communities", communityHandler.Create)
		protected.GET("/communities", communityHandler.List)
		protected.GET("/communities/:id", communityHandler.Get)
		protected.POST("/communities/:id/join", communityHandler.Join)
		protected.POST("/communities/:id/leave", communityHandler.Leave)
		protected.POST("/communities/:id/points/award", communityHandler.Award)
		protected.POST("/communities/:id/points/deduct", communityHandler.Deduct)
		protected.GET("/communities/:id/points/me", communityHandler.GetBalance)
		protected.GET("/communities/:id/points/transactions", communityHandler.ListTransactions)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		Leaderboard: leaderboardSvc,
		Jackpot:     jackpotSvc,
	}
}

func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine) {
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	var origins []string
	if allowedOrigins != "" {
		origins = strings.Split(allowedOrigins, ",")
	} else {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
