package main

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wikenfarma-system/config"
	"wikenfarma-system/internal/commission"
	"wikenfarma-system/internal/database"
	"wikenfarma-system/internal/server/handlers"
	"wikenfarma-system/internal/server/middleware"
	"wikenfarma-system/internal/utils"
)

func main() {
	cfg := config.LoadConfig()
	utils.JwtSecret = []byte(cfg.Auth.JWTSecret)

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := config.NewRedisClient(cfg.Redis)

	policy, err := commission.NewPolicy(
		cfg.Policy.PerformanceBonusAmount,
		cfg.Policy.GrowthBonusThreshold,
		cfg.Policy.MinMonthlyVisits,
		cfg.Policy.VisitPenaltyAmount,
		cfg.Policy.NetDeductionRate,
	)
	if err != nil {
		log.Fatalf("Invalid commission policy configuration: %v", err)
	}

	compensationService := commission.NewService(db, redisClient, policy)

	authHandler := handlers.NewAuthHandler(db)
	informatoreHandler := handlers.NewInformatoreHandler(db)
	recordHandler := handlers.NewRecordHandler(db)
	compensationHandler := handlers.NewCompensationHandler(compensationService)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.RequestID())
	r.Use(middleware.RateLimit("120-M"))

	// --- Public API Group ---
	public := r.Group("/api/v1")
	{
		auth := public.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
		}
	}

	// --- Admin API Group ---
	admin := r.Group("/api/v1")
	admin.Use(middleware.JWTAuth(), middleware.AdminOnly())
	{
		informatori := admin.Group("/informatori")
		{
			informatori.POST("", informatoreHandler.Create)
			informatori.GET("", informatoreHandler.List)
			informatori.GET("/:id", informatoreHandler.Get)
			informatori.PUT("/:id", informatoreHandler.Update)
			informatori.DELETE("/:id", informatoreHandler.Deactivate)
		}

		orders := admin.Group("/orders")
		{
			orders.POST("", recordHandler.CreateOrder)
			orders.GET("", recordHandler.ListOrders)
		}

		visits := admin.Group("/visits")
		{
			visits.POST("", recordHandler.CreateVisit)
			visits.GET("", recordHandler.ListVisits)
		}

		bonusMalus := admin.Group("/bonus-malus")
		{
			bonusMalus.POST("", recordHandler.CreateBonusMalus)
			bonusMalus.GET("", recordHandler.ListBonusMalus)
		}

		compensations := admin.Group("/compensations")
		{
			compensations.POST("/calculate", compensationHandler.Calculate)
			compensations.GET("", compensationHandler.List)
			compensations.GET("/stats", compensationHandler.Stats)
			compensations.POST("/:id/approve", compensationHandler.Approve)
			compensations.POST("/:id/pay", compensationHandler.Pay)
			compensations.POST("/:id/reject", compensationHandler.Reject)
		}
	}

	// --- Representative Dashboard Group (read-only) ---
	dashboard := r.Group("/api/v1/informatori")
	dashboard.Use(middleware.JWTAuth(), middleware.InformatoreOnly())
	{
		dashboard.GET("/my-compensation", compensationHandler.MyCompensation)
		dashboard.GET("/commission-logs", compensationHandler.MyCommissionLogs)
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"message":   "Server is running",
			"timestamp": time.Now(),
		})
	})

	port := ":" + cfg.Server.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
