package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/events"
	"storefront/internal/handlers"
	"storefront/internal/middleware"
	"storefront/internal/notify"
	"storefront/internal/payment"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureProductIndexes(db); err != nil {
		log.Printf("product index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsurePromoCodeIndexes(db); err != nil {
		log.Printf("promo code index warning: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	mailer := notify.NewMailer(
		config.AppEnv.SMTPHost,
		config.AppEnv.SMTPPort,
		config.AppEnv.SMTPUser,
		config.AppEnv.SMTPPass,
		config.AppEnv.SMTPFrom,
		logger,
	)

	producer, err := events.NewProducer(config.AppEnv.KafkaBrokers, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer producer.Close()

	gateway := payment.NewClient(
		config.AppEnv.KnetBaseURL,
		config.AppEnv.KnetClientID,
		config.AppEnv.KnetClientSecret,
		config.AppEnv.KnetEncryptionKey,
	)

	r := gin.Default()

	r.GET("/products", handlers.GetProducts(db))
	r.GET("/products/:id", handlers.GetProduct(db))
	r.GET("/offers", handlers.GetOffers(db))

	r.POST("/orders", handlers.CreateOrder(db, mailer, producer))
	r.GET("/orders", handlers.GetOrders(db))
	r.DELETE("/orders", handlers.CancelOrder(db, mailer, producer))

	r.POST("/promo", handlers.ValidatePromo(db))
	r.POST("/projects/bundle-order", handlers.PlaceBundleOrder(db, mailer, producer))

	r.POST("/pay", handlers.InitiatePayment(gateway, config.AppEnv.PaymentReturnURL))
	r.GET("/payment-result", handlers.PaymentResult(
		gateway,
		config.AppEnv.PaymentSuccessURL,
		config.AppEnv.PaymentErrorURL,
	))

	r.POST("/admin/login", handlers.AdminLogin(db, config.AppEnv.JWTSecret, config.AppEnv.AccessTokenTTL))

	admin := r.Group("/admin/api")
	admin.Use(middleware.AdminAuth(config.AppEnv.JWTSecret))
	{
		admin.GET("/me", func(c *gin.Context) {
			c.JSON(200, gin.H{"ok": true})
		})

		admin.GET("/orders", handlers.GetAllOrders(db))

		admin.GET("/promocodes", handlers.GetAllPromoCodes(db))
		admin.POST("/promocodes", handlers.CreatePromoCode(db))
		admin.PUT("/promocodes/:id", handlers.UpdatePromoCode(db))
		admin.DELETE("/promocodes/:id", handlers.DeletePromoCode(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}
