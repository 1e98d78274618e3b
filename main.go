package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"parcel-delivery/apperror"
	"parcel-delivery/database"
	"parcel-delivery/database/seeders"
	"parcel-delivery/logger"
	"parcel-delivery/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warning("No .env file found, relying on environment")
	}

	app := fiber.New(fiber.Config{
		ReadBufferSize:  32768, // 32KB read buffer
		WriteBufferSize: 32768, // 32KB write buffer
		ReadTimeout:     time.Second * 30,
		WriteTimeout:    time.Second * 30,
		ErrorHandler:    apperror.ErrorHandler,
	})

	db, err := database.InitDB()
	if err != nil {
		logger.Fatal("Failed to connect to the database: " + err.Error())
	}

	if err := seeders.SeedSuperAdmin(db); err != nil {
		logger.Fatal("Failed to seed SuperAdmin account: " + err.Error())
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("FRONTEND_URL"),
		AllowMethods:     "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	routes.SetupRoutes(app, db)

	appHost := os.Getenv("APP_HOST")
	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		appPort = "8080"
	}

	// Shut down cleanly on SIGINT/SIGTERM so in-flight requests finish.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("Shutting down server")
		if err := app.Shutdown(); err != nil {
			logger.Error("Server shutdown failed", err)
		}
	}()

	logger.Success("Server is running on ip: " + appHost + " port: " + appPort)
	if err := app.Listen(appHost + ":" + appPort); err != nil {
		logger.Fatal("Server stopped unexpectedly: " + err.Error())
	}
}
