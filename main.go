package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/collegecab/collegecab-backend/database"
	"github.com/collegecab/collegecab-backend/internal/models"
	"github.com/collegecab/collegecab-backend/internal/routes"
	"github.com/collegecab/collegecab-backend/internal/services"
	"github.com/collegecab/collegecab-backend/internal/storage"
)

// Vehicle types seeded on first boot so the registration form has
// something to reference.
var defaultVehicleTypes = []string{"Van", "Mini Bus", "Bus", "Car"}

func main() {
	// Load .env file for local development
	if os.Getenv("INSTANCE_CONNECTION_NAME") == "" {
		err := godotenv.Load(".env")
		if err != nil {
			err = godotenv.Load("environments/.env.development")
			if err != nil {
				log.Println("⚠️  No .env file found - checking environment variables")
			}
		}
	}

	// Initialize storage
	var store storage.Store

	// Check if we should use memory store (for testing)
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		log.Println("⚠️  Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		// Connect to database
		log.Println("📦 Connecting to PostgreSQL database...")
		database.Connect()

		// Run migrations
		log.Println("🔄 Running database migrations...")
		err := database.DB.AutoMigrate(
			&models.User{},
			&models.PendingRegistration{},
			&models.DriverProfile{},
			&models.ParentProfile{},
			&models.VehicleType{},
			&models.College{},
			&models.CollegeTiming{},
			&models.DriverCollegeMapping{},
			&models.Child{},
		)
		if err != nil {
			log.Fatal("Failed to migrate database:", err)
		}
		log.Println("✅ Database migrations completed!")

		store = storage.NewDatabaseStore(database.DB)
		log.Println("✅ Using PostgreSQL database storage")
	}

	// Seed vehicle types
	for _, name := range defaultVehicleTypes {
		if _, err := store.EnsureVehicleType(name); err != nil {
			log.Printf("⚠️  Failed to seed vehicle type %q: %v", name, err)
		}
	}

	// Set global store instance
	storage.SetStore(store)

	// Initialize services. The SMS notifier is optional - without
	// Twilio credentials OTP codes are only logged and echoed.
	var notifier services.Notifier
	smsService, err := services.NewSMSService()
	if err != nil {
		log.Println("⚠️  Twilio not configured - running in OTP demo mode")
	} else {
		notifier = smsService
		log.Println("✅ Twilio SMS service initialized")
	}

	tokenService := services.NewTokenService()
	mappingService := services.NewMappingService(store)
	registrationService := services.NewRegistrationService(store, tokenService, mappingService, notifier)

	log.Println("✅ All services initialized")

	// Create fiber app
	app := fiber.New(fiber.Config{
		AppName: "CollegeCab Backend v1.0.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"detail": err.Error(),
			})
		},
	})

	// Middleware
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PATCH, DELETE, OPTIONS",
	}))

	// Health check endpoint with database status
	app.Get("/", func(c *fiber.Ctx) error {
		response := fiber.Map{
			"service":     "CollegeCab Backend API",
			"version":     "1.0.0",
			"status":      "healthy",
			"environment": getEnvironment(),
			"storage":     getStorageType(),
		}

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			dbStatus := "connected"
			if err != nil {
				dbStatus = "error: " + err.Error()
			} else if err := sqlDB.Ping(); err != nil {
				dbStatus = "error: " + err.Error()
			}

			// Get counts
			var userCount, pendingCount, collegeCount, mappingCount, childCount int64
			database.DB.Model(&models.User{}).Count(&userCount)
			database.DB.Model(&models.PendingRegistration{}).Count(&pendingCount)
			database.DB.Model(&models.College{}).Count(&collegeCount)
			database.DB.Model(&models.DriverCollegeMapping{}).Count(&mappingCount)
			database.DB.Model(&models.Child{}).Count(&childCount)

			response["database"] = fiber.Map{
				"status":                dbStatus,
				"users":                 userCount,
				"pending_registrations": pendingCount,
				"colleges":              collegeCount,
				"driver_mappings":       mappingCount,
				"children":              childCount,
			}
		}

		return c.JSON(response)
	})

	// Health check endpoint for monitoring
	app.Get("/health", func(c *fiber.Ctx) error {
		status := "healthy"
		statusCode := 200

		if os.Getenv("USE_MEMORY_STORE") != "true" && database.DB != nil {
			sqlDB, err := database.DB.DB()
			if err != nil || sqlDB.Ping() != nil {
				status = "unhealthy"
				statusCode = 503
			}
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
			"services": fiber.Map{
				"database": status == "healthy",
				"sms":      notifier != nil,
			},
		})
	})

	// Setup routes
	routes.SetupRoutes(app, store, registrationService, mappingService, tokenService)

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("\n🛑 Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	log.Println("========================================")
	log.Printf("🚀 CollegeCab Backend starting on port %s", port)
	log.Printf("📊 Storage: %s", getStorageType())
	log.Printf("🌍 Environment: %s", getEnvironment())
	log.Printf("📱 SMS: %s", getSMSStatus(notifier))
	log.Println("========================================")

	log.Fatal(app.Listen(":" + port))
}

func getEnvironment() string {
	if os.Getenv("INSTANCE_CONNECTION_NAME") != "" {
		return "Production (Cloud Run)"
	}
	return "Development (Local)"
}

func getStorageType() string {
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		return "In-Memory (Testing)"
	}
	return "PostgreSQL Database"
}

func getSMSStatus(notifier services.Notifier) string {
	if notifier == nil {
		return "Demo mode (OTP logged only)"
	}
	return "Configured"
}
