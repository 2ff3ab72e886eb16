package routes

import (
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/KrishnaWeb0104/backendv1/controllers"
	"github.com/KrishnaWeb0104/backendv1/middlewares"
	"github.com/KrishnaWeb0104/backendv1/models"
)

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowCredentials = true
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		cfg.AllowOrigins = strings.Split(origins, ",")
	} else {
		// Development default; credentialed CORS needs explicit origins.
		cfg.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	return cfg
}

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(corsConfig()))
	r.Static("/uploads", "./uploads")

	// authLimiter: 1 req/sec, burst 5
	authLimiter := middlewares.RateLimit(rate.Limit(1), 5)

	authed := middlewares.Authenticate(db)
	adminAccess := middlewares.RequireAdminAccess(db)

	api := r.Group("/api/v1")

	// Auth routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authLimiter, controllers.Register(db))
		auth.POST("/login", authLimiter, controllers.Login(db))
		auth.GET("/verify-email/:token", controllers.VerifyEmail(db))
		auth.POST("/refresh-token", controllers.RefreshToken(db))
		auth.POST("/forgot-password", authLimiter, controllers.ForgotPassword(db))
		auth.POST("/reset-password/:token", authLimiter, controllers.ResetPassword(db))
	}

	// Current-user routes
	user := api.Group("/users", authed)
	{
		user.GET("/me", controllers.GetCurrentUser())
		user.POST("/logout", controllers.Logout(db))
		user.POST("/change-password", controllers.ChangePassword(db))
		user.PATCH("/update-account", controllers.UpdateAccount(db))
		user.PATCH("/avatar", controllers.UpdateAvatar(db))
		user.POST("/resend-verification", controllers.ResendVerification(db))
	}

	// Products
	products := api.Group("/products")
	{
		products.GET("", controllers.GetProducts(db))
		products.GET("/:id", controllers.GetProductByID(db))

		products.POST("/add-product",
			authed, adminAccess, middlewares.RequirePermission(db, "PRODUCTS", "CREATE"),
			controllers.CreateProduct(db))
		products.PATCH("/update-product/:id",
			authed, adminAccess, middlewares.RequirePermission(db, "PRODUCTS", "UPDATE"),
			controllers.UpdateProduct(db))
		products.DELETE("/delete-product/:id",
			authed, adminAccess, middlewares.RequirePermission(db, "PRODUCTS", "DELETE"),
			controllers.DeleteProduct(db))
	}

	// Cart
	cart := api.Group("/cart", authed)
	{
		cart.GET("", controllers.GetCart(db))
		cart.POST("/add-cart", controllers.AddToCart(db))
		cart.POST("/merge-carts", controllers.MergeCarts(db))
		cart.PATCH("/update-cart/:id", controllers.UpdateCartItem(db))
		cart.DELETE("/delete-cart/:id", controllers.RemoveFromCart(db))
		cart.DELETE("/clear-cart", controllers.ClearCart(db))
	}

	// Orders
	orders := api.Group("/orders", authed)
	{
		orders.POST("/create-order", controllers.CreateOrder(db))
		orders.GET("/get-all", controllers.GetUserOrders(db))
		orders.GET("/:id", controllers.GetOrderByID(db))
		orders.DELETE("/delete-order/:id", controllers.DeleteOrder(db))
		orders.POST("/cancel-order/:id", controllers.CancelOrder(db))
		orders.POST("/return-order/:id", controllers.ReturnOrder(db))
		orders.PUT("/status-order/:id",
			adminAccess, middlewares.RequirePermission(db, "ORDERS", "UPDATE"),
			controllers.UpdateOrderStatus(db))
	}

	// Stories
	stories := api.Group("/stories")
	{
		stories.GET("", controllers.GetStories(db))
		stories.GET("/:id", controllers.GetStoryByID(db))

		adminOnly := middlewares.AuthorizeRoles(models.AdminRoles...)
		stories.POST("", authed, adminOnly, controllers.CreateStory(db))
		stories.PUT("/:id", authed, adminOnly, controllers.UpdateStory(db))
		stories.DELETE("/:id", authed, adminOnly, controllers.DeleteStory(db))
	}

	// Contact settings (CMS)
	settings := api.Group("/contact-settings")
	{
		settings.GET("", controllers.GetContactSetting(db))

		settings.GET("/all",
			authed, adminAccess, middlewares.RequirePermission(db, "CMS", "READ"),
			controllers.ListContactSettings(db))
		settings.POST("",
			authed, adminAccess, middlewares.RequirePermission(db, "CMS", "CREATE"),
			controllers.CreateContactSetting(db))
		settings.PUT("/:id",
			authed, adminAccess, middlewares.RequirePermission(db, "CMS", "UPDATE"),
			controllers.UpdateContactSetting(db))
		settings.POST("/:id/toggle",
			authed, adminAccess, middlewares.RequirePermission(db, "CMS", "UPDATE"),
			controllers.ToggleContactSetting(db))
		settings.DELETE("/:id",
			authed, adminAccess, middlewares.RequirePermission(db, "CMS", "DELETE"),
			controllers.DeleteContactSetting(db))
		// Legacy upsert used by the dashboard
		settings.PUT("",
			authed, adminAccess, middlewares.RequirePermission(db, "CMS", "UPDATE"),
			controllers.UpsertContactSetting(db))
	}

	// Contact messages
	messages := api.Group("/messages")
	{
		messages.POST("", controllers.CreateMessage(db))

		messages.GET("",
			authed, adminAccess, middlewares.RequirePermission(db, "MESSAGES", "READ"),
			controllers.GetMessages(db))
		messages.GET("/:id",
			authed, adminAccess, middlewares.RequirePermission(db, "MESSAGES", "READ"),
			controllers.GetMessage(db))
		messages.PATCH("/:id",
			authed, adminAccess, middlewares.RequirePermission(db, "MESSAGES", "UPDATE"),
			controllers.UpdateMessage(db))
		messages.POST("/:id/read",
			authed, adminAccess, middlewares.RequirePermission(db, "MESSAGES", "UPDATE"),
			controllers.MarkMessageRead(db))
		messages.POST("/:id/archive",
			authed, adminAccess, middlewares.RequirePermission(db, "MESSAGES", "UPDATE"),
			controllers.ArchiveMessage(db))
		messages.DELETE("/:id",
			authed, adminAccess, middlewares.RequirePermission(db, "MESSAGES", "DELETE"),
			controllers.DeleteMessage(db))
	}

	// Admin user management
	admin := api.Group("/admin", authed, adminAccess)
	{
		admin.GET("/users",
			middlewares.RequirePermission(db, "USERS", "READ"),
			controllers.GetAllUsers(db))

		superOnly := middlewares.AuthorizeRoles(models.RoleSuperAdmin)
		admin.PUT("/users/:id/admin-profile", superOnly, controllers.UpsertAdminProfile(db))
		admin.GET("/users/:id/admin-profile", superOnly, controllers.GetAdminProfile(db))
	}

	// Fallback for unknown routes
	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "page not found"})
	})

	return r
}
