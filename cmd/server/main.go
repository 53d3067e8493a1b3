package main

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/NumanIbnMazid/restaurant-management/internal/database"
	"github.com/NumanIbnMazid/restaurant-management/internal/handlers"
	"github.com/NumanIbnMazid/restaurant-management/internal/repositories"
	"github.com/NumanIbnMazid/restaurant-management/internal/router"
	"github.com/NumanIbnMazid/restaurant-management/internal/services"
	"github.com/NumanIbnMazid/restaurant-management/pkg/utils"
)

func main() {
	utils.InitLogger()
	utils.InitJWT(utils.Getenv("JWT_SECRET", "insecure-dev-secret"))

	if !utils.GetenvBool("DEBUG", false) {
		gin.SetMode(gin.ReleaseMode)
	}

	database.InitDB(
		utils.Getenv("DB_HOST", "localhost"),
		utils.Getenv("DB_PORT", "5432"),
		utils.Getenv("DB_USER", "postgres"),
		utils.Getenv("DB_PASSWORD", "postgres"),
		utils.Getenv("DB_NAME", "restaurant"),
		utils.Getenv("DB_SSLMODE", "disable"),
		utils.Getenv("DB_SCHEMA_PATH", ""),
	)
	db := database.GetDB()
	defer db.Close()

	orderRepo := repositories.NewOrderRepository(db)
	tableRepo := repositories.NewTableRepository(db)
	foodRepo := repositories.NewFoodRepository(db)
	restaurantRepo := repositories.NewRestaurantRepository(db)
	staffRepo := repositories.NewStaffRepository(db)
	invoiceRepo := repositories.NewInvoiceRepository(db)
	authRepo := repositories.NewAuthRepository(db)

	notifier := services.NewFCMSender(services.FCMConfig{
		ServerKey: utils.Getenv("FCM_SERVER_KEY", ""),
		Endpoint:  utils.Getenv("FCM_ENDPOINT", "https://fcm.googleapis.com/fcm/send"),
		Timeout:   10 * time.Second,
	})

	invoiceSvc := services.NewInvoiceService(invoiceRepo, orderRepo)
	orderSvc := services.NewOrderService(orderRepo, tableRepo, foodRepo, restaurantRepo, staffRepo, invoiceRepo, invoiceSvc, notifier, db)
	tableSvc := services.NewTableService(tableRepo, staffRepo, notifier)
	authSvc := services.NewAuthService(authRepo, db)

	engine := router.Setup(router.Handlers{
		Auth:    handlers.NewAuthHandler(authSvc),
		Order:   handlers.NewOrderHandler(orderSvc),
		Invoice: handlers.NewInvoiceHandler(invoiceSvc),
		Table:   handlers.NewTableHandler(tableSvc),
	})

	addr := ":" + utils.Getenv("SERVER_PORT", "8080")
	log.Info().Str("addr", addr).Msg("starting server")
	if err := engine.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
