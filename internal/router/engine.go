package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jonborges/menu4you/pkg/config"
)

func InitEngine(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	return r
}

func InitializeRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/health", h.HealthCheck)
		api.GET("/status", h.Status)

		api.GET("/session", h.GetSession)
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/logout", h.Logout)
		}
		api.GET("/guest", h.GetGuest)
		api.PUT("/guest", h.SaveGuest)

		cart := api.Group("/cart")
		{
			cart.GET("", h.GetCart)
			cart.DELETE("", h.ClearCart)
			cart.POST("/items", h.AddToCart)
			cart.PUT("/items/:itemId", IDParam("itemId"), h.UpdateCartItem)
			cart.DELETE("/items/:itemId", IDParam("itemId"), h.RemoveFromCart)
			cart.PUT("/table", h.BindTable)
			cart.POST("/checkout", h.Checkout)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", h.ListNotifications)
			notifications.POST("", h.ShowNotification)
			notifications.DELETE("/:id", h.DismissNotification)
		}

		modal := api.Group("/modal")
		{
			modal.GET("", h.GetModal)
			modal.POST("", h.OpenModal)
			modal.DELETE("", h.CloseModal)
		}

		owner := RequireLogin(h.session)

		restaurants := api.Group("/restaurants")
		{
			restaurants.GET("", h.GetRestaurants)
			restaurants.GET("/owner/:ownerId", IDParam("ownerId"), h.GetRestaurantByOwner)
			restaurants.GET("/:id", IDParam("id"), h.GetRestaurant)
			restaurants.GET("/:id/items", IDParam("id"), h.GetRestaurantItems)
			restaurants.GET("/:id/items/featured", IDParam("id"), h.GetFeaturedItems)
			restaurants.GET("/:id/employees", IDParam("id"), h.GetRestaurantEmployees)
			restaurants.GET("/:id/orders", owner, IDParam("id"), h.GetRestaurantOrders)
			restaurants.POST("", owner, h.CreateRestaurant)
			restaurants.PUT("/:id", owner, IDParam("id"), h.UpdateRestaurant)
		}

		items := api.Group("/items")
		{
			items.GET("/search", h.SearchItems)
			items.POST("", owner, h.CreateItem)
			items.PUT("/:id", owner, IDParam("id"), h.UpdateItem)
			items.DELETE("/:id", owner, IDParam("id"), h.DeleteItem)
		}

		employees := api.Group("/employees")
		{
			employees.GET("", h.GetEmployees)
			employees.GET("/:id", IDParam("id"), h.GetEmployee)
			employees.POST("", owner, h.CreateEmployee)
			employees.PUT("/:id", owner, IDParam("id"), h.UpdateEmployee)
			employees.DELETE("/:id", owner, IDParam("id"), h.DeleteEmployee)
		}

		api.DELETE("/orders/:id", owner, IDParam("id"), h.DeleteOrder)
		api.POST("/files/upload", owner, h.UploadFile)
	}
}
