package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/powervate/admin-api/internal/middleware"
)

type RouterConfig struct {
	AllowOrigins []string
	// Auth guards every /api route.
	Auth   gin.HandlerFunc
	Logger *slog.Logger
	// Health reports whether the backing services are reachable. Optional.
	Health func(ctx context.Context) error
}

func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.StructuredLogger(cfg.Logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.Health != nil {
			if err := cfg.Health(c.Request.Context()); err != nil {
				_ = c.Error(err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	})

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/login", h.Login)
	}

	apiRoutes := r.Group("/api")
	apiRoutes.Use(cfg.Auth)
	{
		// Session and own profile
		apiRoutes.POST("/logout", h.Logout)
		apiRoutes.GET("/me", h.GetMe)
		apiRoutes.PUT("/me", h.UpdateMe)
		apiRoutes.PUT("/me/password", h.ChangePassword)

		apiRoutes.GET("/dashboard", h.GetDashboard)

		// App users
		apiRoutes.GET("/users", h.GetUsers)
		apiRoutes.GET("/users/search", h.SearchUsers)
		apiRoutes.GET("/users/by-date", h.GetUsersByDate)
		apiRoutes.POST("/users", h.CreateUser)
		apiRoutes.GET("/users/:id", h.GetUser)
		apiRoutes.PUT("/users/:id", h.UpdateUser)
		apiRoutes.DELETE("/users/:id", h.DeleteUser)

		// Products
		apiRoutes.GET("/products", h.GetProducts)
		apiRoutes.GET("/products/all", h.GetAllProducts)
		apiRoutes.GET("/products/search", h.SearchProducts)
		apiRoutes.POST("/products", h.CreateProduct)
		apiRoutes.PUT("/products/:id", h.UpdateProduct)
		apiRoutes.DELETE("/products/:id", h.DeleteProduct)
		apiRoutes.POST("/uploads/image", h.UploadImage)

		// Doctors
		apiRoutes.GET("/doctors", h.GetDoctors)
		apiRoutes.POST("/doctors", h.CreateDoctor)
		apiRoutes.GET("/doctors/:id", h.GetDoctor)
		apiRoutes.PUT("/doctors/:id", h.UpdateDoctor)
		apiRoutes.DELETE("/doctors/:id", h.DeleteDoctor)

		// Discount and pricing plans
		apiRoutes.GET("/discount", h.GetDiscount)
		apiRoutes.PUT("/discount", h.SaveDiscount)
		apiRoutes.PATCH("/discount/status", h.SetDiscountStatus)
		apiRoutes.DELETE("/discount", h.DeleteDiscount)
		apiRoutes.GET("/pricing-plans", h.GetPricingPlans)
		apiRoutes.PUT("/pricing-plans/:slot", h.SavePricingPlan)
		apiRoutes.DELETE("/pricing-plans/:slot", h.DeletePricingPlan)
	}

	return r
}
