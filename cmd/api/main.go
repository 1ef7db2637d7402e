package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"kindred/internal/config"
	"kindred/internal/database"
	"kindred/internal/handlers"
	"kindred/internal/logger"
	"kindred/internal/middleware"
	"kindred/internal/realtime"
	"kindred/internal/services"
	"kindred/internal/validator"
)

// @title           Kindred API
// @version         1.0
// @description     Kindred lets households track their finances together: shared budgets, savings goals, and opt-in transaction sharing with realtime updates.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	validator.Register()

	// Initialize services. The hub authorizes channel joins through the
	// family service, and the family services broadcast through the hub.
	db := dbManager.DB()
	activityService := services.NewActivityService(db)
	userService := services.NewUserService(db)

	var familyService services.FamilyServicer
	hub := realtime.NewHub(func(userID, familyID string) bool {
		return familyService.IsAcceptedMember(userID, familyID)
	})
	familyService = services.NewFamilyService(db, hub, activityService)

	budgetService := services.NewFamilyBudgetService(db, hub, activityService)
	goalService := services.NewFamilyGoalService(db, hub, activityService)
	dataService := services.NewFamilyDataService(db)
	transactionService := services.NewTransactionService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	familyHandler := handlers.NewFamilyHandler(familyService, activityService)
	budgetHandler := handlers.NewFamilyBudgetHandler(budgetService)
	goalHandler := handlers.NewFamilyGoalHandler(goalService)
	dataHandler := handlers.NewFamilyDataHandler(dataService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	wsHandler := handlers.NewWSHandler(hub)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", appConfig.FrontendURL)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Realtime endpoint authenticates via query token during the handshake
	v1.GET("/ws", wsHandler.Serve)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// Transaction routes
	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)

	// Family routes
	families := protected.Group("/families")
	families.POST("", familyHandler.CreateFamily)
	families.GET("", familyHandler.GetMyFamilies)
	families.POST("/join", familyHandler.JoinFamily)
	families.GET("/requests", familyHandler.GetPendingRequests)
	families.GET("/my-requests", familyHandler.GetMyJoinRequests)
	families.POST("/members/:memberId/accept", familyHandler.AcceptRequest)
	families.POST("/members/:memberId/reject", familyHandler.RejectRequest)
	families.PUT("/members/:memberId/permissions", familyHandler.UpdateMemberPermissions)
	families.DELETE("/members/:memberId", familyHandler.RemoveMember)
	families.POST("/:id/leave", familyHandler.LeaveFamily)
	families.DELETE("/:id", familyHandler.DeleteFamily)
	families.PUT("/:id/sharing", familyHandler.SetTransactionSharing)
	families.GET("/:id/activity", familyHandler.GetFamilyActivity)

	// Shared budget routes
	families.POST("/:id/budgets", budgetHandler.CreateBudget)
	families.GET("/:id/budgets", budgetHandler.GetBudgets)
	families.PUT("/:id/budgets/:budgetId", budgetHandler.UpdateBudget)
	families.DELETE("/:id/budgets/:budgetId", budgetHandler.DeleteBudget)

	// Shared goal routes
	families.POST("/:id/goals", goalHandler.CreateGoal)
	families.GET("/:id/goals", goalHandler.GetGoals)
	families.PUT("/:id/goals/:goalId", goalHandler.UpdateGoal)
	families.DELETE("/:id/goals/:goalId", goalHandler.DeleteGoal)
	families.POST("/:id/goals/:goalId/contribute", goalHandler.Contribute)

	// Shared data routes
	families.GET("/:id/transactions", dataHandler.GetFamilyTransactions)
	families.GET("/:id/summary", dataHandler.GetFamilySummary)

	log.Infof("Starting Kindred backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
