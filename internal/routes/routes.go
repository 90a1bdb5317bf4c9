package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/collegecab/collegecab-backend/internal/handlers"
	"github.com/collegecab/collegecab-backend/internal/middleware"
	"github.com/collegecab/collegecab-backend/internal/services"
	"github.com/collegecab/collegecab-backend/internal/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, registration *services.RegistrationService, mappings *services.MappingService, tokens *services.TokenService) {
	driverHandler := handlers.NewDriverHandler(store, registration, mappings)
	parentHandler := handlers.NewParentHandler(store, registration)
	childrenHandler := handlers.NewChildrenHandler(store)

	requireAuth := middleware.RequireAuth(tokens)

	api := app.Group("/api")

	// Driver registration and login
	api.Post("/register", driverHandler.Register)
	api.Post("/verify-otp", driverHandler.VerifyOTP)
	api.Post("/send-otp", driverHandler.SendOTP)
	api.Post("/login", driverHandler.Login)
	api.Get("/vehicle-types", driverHandler.ListVehicleTypes)

	// Driver profile and college mapping (authenticated, own records only)
	api.Get("/driver-profile/:driver_id", requireAuth, driverHandler.GetProfile)
	api.Patch("/driver-profile/:driver_id", requireAuth, driverHandler.UpdateProfile)
	api.Get("/driver-mapping/:pk", requireAuth, driverHandler.GetMapping)
	api.Patch("/driver-mapping/:pk", requireAuth, driverHandler.UpdateMapping)
	api.Delete("/driver-mapping/:pk", requireAuth, driverHandler.DeleteMapping)

	// Parent registration and login
	api.Post("/parent-register", parentHandler.Register)
	api.Post("/parent-verify-otp", parentHandler.VerifyOTP)
	api.Post("/parent-send-otp", parentHandler.SendOTP)
	api.Post("/parent-login", parentHandler.Login)

	// Children CRUD (authenticated parents)
	children := api.Group("/children", requireAuth)
	children.Post("/add", childrenHandler.Add)
	children.Patch("/edit/:pk", childrenHandler.Edit)
	children.Delete("/delete/:pk", childrenHandler.Delete)
	children.Get("/list/:parent_id", childrenHandler.ListByParent)
}
