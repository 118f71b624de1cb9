package main

import (
	"context"
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/roshshop/backend/config"
	"github.com/roshshop/backend/controllers"
	"github.com/roshshop/backend/database"
	"github.com/roshshop/backend/kafka"
	"github.com/roshshop/backend/logger"
	"github.com/roshshop/backend/middleware"
	"github.com/roshshop/backend/models"
	awspkg "github.com/roshshop/backend/pkg/aws"
	"github.com/roshshop/backend/repository"
	"github.com/roshshop/backend/routes"
	"github.com/roshshop/backend/sender"
	"github.com/roshshop/backend/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zlog.Sync()

	db, err := database.ConnectPostgres(cfg, zlog,
		&models.Product{},
		&models.UserCartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.NotificationLog{},
	)
	if err != nil {
		zlog.Fatal("database connection failed", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		zlog.Fatal("redis connection failed", zap.Error(err))
	}
	zlog.Info("Connected to Redis")

	brokers := strings.Split(cfg.KafkaBrokers, ",")
	producer := kafka.NewProducer(brokers, cfg.PaymentEventTopic)
	defer producer.Close()

	// SNS fan-out is best-effort; run without it when AWS is not configured.
	var snsPublisher awspkg.SNSPublisher
	if cfg.OrderSNSTopicARN != "" {
		awsCfg, err := awspkg.LoadAWSConfig(context.Background())
		if err != nil {
			zlog.Warn("AWS config unavailable, SNS publishing disabled", zap.Error(err))
		} else {
			snsPublisher = awspkg.NewSNSClient(awsCfg)
		}
	}

	guestCarts := repository.NewRedisGuestCartRepository(redisClient, cfg.GuestCartTTL)
	userCarts := repository.NewGormCartRepository(db)
	productRepo := repository.NewGormProductRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)

	cartSvc := services.NewCartService(guestCarts, userCarts, zlog)
	orderSvc := services.NewOrderService(orderRepo, productRepo, snsPublisher, cfg.OrderSNSTopicARN, zlog)
	stripeSvc := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookKey, cfg.PublicBaseURL)

	emailSender, err := sender.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass)
	if err != nil {
		zlog.Fatal("smtp sender setup failed", zap.Error(err))
	}
	notificationSvc, err := services.NewNotificationService(orderRepo, notificationRepo, emailSender, zlog)
	if err != nil {
		zlog.Fatal("notification service setup failed", zap.Error(err))
	}

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	go services.StartPaymentConsumer(consumerCtx, brokers, cfg.PaymentEventTopic, cfg.ConsumerGroupID, notificationSvc, zlog)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(zlog))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.PublicBaseURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.SessionHeader},
		AllowCredentials: true,
	}))

	routes.Register(r, routes.Controllers{
		Cart:     controllers.NewCartController(guestCarts, userCarts, productRepo, cartSvc, zlog),
		Product:  controllers.NewProductController(productRepo, redisClient, zlog),
		Order:    controllers.NewOrderController(orderSvc, zlog),
		Checkout: controllers.NewCheckoutController(orderRepo, stripeSvc, zlog),
		Payment:  controllers.NewPaymentController(stripeSvc, orderRepo, producer, zlog),
	}, cfg.JWTSecret)

	zlog.Info("storefront backend listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatal("server error", zap.Error(err))
	}
}
