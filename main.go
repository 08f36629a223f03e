package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nkoudou/veltrabackend/cart"
	"github.com/nkoudou/veltrabackend/config"
	"github.com/nkoudou/veltrabackend/controllers"
	"github.com/nkoudou/veltrabackend/database"
	"github.com/nkoudou/veltrabackend/enquiry"
	"github.com/nkoudou/veltrabackend/export"
	"github.com/nkoudou/veltrabackend/mailer"
	"github.com/nkoudou/veltrabackend/middleware"
	"github.com/nkoudou/veltrabackend/ratelimit"
	"github.com/nkoudou/veltrabackend/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	var logger *zap.Logger
	var err error
	if os.Getenv("APP_ENV") == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	cfgSource := config.Load(logger)

	// Seed the admin user for the intake management surface.
	ctx := context.Background()
	usersCol := database.OpenCollection("users")
	if err := utils.SeedAdminUser(ctx, usersCol); err != nil {
		logger.Fatal("admin seed failed", zap.Error(err))
	}

	var redisClient *redis.Client
	if url := os.Getenv("REDIS_URL"); url != "" {
		redisClient = database.NewRedisClient(url)
	} else {
		logger.Warn("REDIS_URL not set; carts degrade to in-process no-op storage")
	}

	var newMedium func(string) cart.Medium
	var newHandoff func(string) cart.Handoff
	var limiter ratelimit.Limiter = ratelimit.NewFixedWindow()
	if redisClient != nil {
		newMedium = func(sessionID string) cart.Medium {
			return cart.NewRedisMedium(redisClient, sessionID)
		}
		newHandoff = func(sessionID string) cart.Handoff {
			return cart.NewRedisHandoff(redisClient, sessionID)
		}
		if os.Getenv("RATE_LIMIT_BACKEND") == "redis" {
			limiter = ratelimit.NewRedisFixedWindow(redisClient, logger)
		}
	}
	sessions := cart.NewSessions(newMedium, newHandoff, logger)

	var sender mailer.EmailSender
	sender, err = mailer.NewSMTPSender()
	if err != nil {
		logger.Fatal("smtp config", zap.Error(err))
	}

	repo := enquiry.NewMongoRepository(database.OpenCollection("trade_enquiries"))
	svc := enquiry.NewService(cfgSource, limiter, repo, sender, logger)

	var renderer controllers.DocRenderer
	if r, err := export.NewHTTPRenderer(); err != nil {
		logger.Warn("pdf export disabled", zap.Error(err))
	} else {
		renderer = r
	}
	var uploader controllers.DocUploader
	if u, err := export.NewGCSUploader(ctx); err != nil {
		logger.Warn("pdf upload disabled", zap.Error(err))
	} else {
		uploader = u
	}

	r := gin.New()

	origins := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := map[string]bool{}
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Cart-Session"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.JSONRecovery(logger, cfgSource.Current().Messages.ServerError))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.POST("/auth/login", controllers.Login())

	r.POST("/enquiries/trade", controllers.SubmitTradeEnquiry(svc))

	r.GET("/enquiry-cart", controllers.GetCart(sessions))
	r.POST("/enquiry-cart/items", controllers.AddCartItem(sessions))
	r.PATCH("/enquiry-cart/items/:id", controllers.UpdateCartItem(sessions))
	r.DELETE("/enquiry-cart/items/:id", controllers.RemoveCartItem(sessions))
	r.DELETE("/enquiry-cart", controllers.ClearCart(sessions))
	r.GET("/enquiry-cart/events", controllers.CartEvents(sessions))
	r.POST("/enquiry-cart/export", controllers.ExportCart(sessions, renderer, uploader))
	r.POST("/enquiry-cart/handoff", controllers.WriteHandoff(sessions))
	r.GET("/enquiry-cart/handoff", controllers.ReadHandoff(sessions))

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	{
		admin.GET("/trade-enquiries", controllers.GetTradeEnquiries(repo))
		admin.GET("/trade-enquiries/:id", controllers.GetTradeEnquiry(repo))
		admin.PATCH("/trade-enquiries/:id/status", controllers.UpdateTradeEnquiryStatus(repo))
	}

	r.Run()
}
