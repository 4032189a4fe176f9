package routes

import (
	"net/http"

	"food-order/controllers"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Controllers struct {
	Auth     *controllers.AuthController
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
	Store    *controllers.StoreController
	Location *controllers.LocationController
	Order    *controllers.OrderController
	Payment  *controllers.PaymentController
}

// SetupRoutes registers every endpoint. Cart and checkout routes also pass
// sessionMiddleware so only the user signed in on this device can touch the cart.
func SetupRoutes(router *gin.Engine, ctrl Controllers, authMiddleware, sessionMiddleware gin.HandlerFunc) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	router.POST("/auth/register", ctrl.Auth.Register)
	router.POST("/auth/login", ctrl.Auth.Login)
	router.POST("/auth/forgot-password", ctrl.Auth.ForgotPassword)
	router.POST("/auth/reset-password", ctrl.Auth.ResetPassword)
	router.GET("/auth/check-email", ctrl.Auth.CheckEmail)
	router.GET("/auth/session", ctrl.Auth.GetSession)

	router.GET("/categories", ctrl.Store.GetCategories)
	router.GET("/stores", ctrl.Store.GetStores)
	router.GET("/stores/:id", ctrl.Store.GetStoreByID)
	router.GET("/search/recent", ctrl.Store.GetRecentSearches)
	router.DELETE("/search/recent", ctrl.Store.ClearRecentSearches)

	auth := router.Group("/")
	auth.Use(authMiddleware)
	{
		auth.POST("/auth/logout", ctrl.Auth.Logout)
		auth.GET("/auth/profile", ctrl.Auth.GetProfile)
		auth.PATCH("/auth/profile", ctrl.Auth.UpdateProfile)
		auth.POST("/auth/profile/photo", ctrl.Auth.UpdateProfilePhoto)
		auth.POST("/auth/change-password", ctrl.Auth.ChangePassword)

		auth.GET("/orders", ctrl.Order.GetOrders)
		auth.GET("/orders/:id", ctrl.Order.GetOrderByID)
		auth.GET("/payments", ctrl.Payment.GetPayments)

		auth.PUT("/location", ctrl.Location.UpdateLocation)
		auth.GET("/location", ctrl.Location.GetLocation)
		auth.GET("/location/address", ctrl.Location.GetCurrentAddress)
		auth.PUT("/location/delivery-address", ctrl.Location.SaveDeliveryAddress)
		auth.GET("/location/delivery-address", ctrl.Location.GetDeliveryAddress)
	}

	cart := router.Group("/")
	cart.Use(authMiddleware, sessionMiddleware)
	{
		cart.GET("/cart", ctrl.Cart.GetCart)
		cart.GET("/cart/totals", ctrl.Cart.GetTotals)
		cart.POST("/cart/items", ctrl.Cart.AddItem)
		cart.PATCH("/cart/items/:itemId", ctrl.Cart.UpdateQuantity)
		cart.DELETE("/cart/items/:itemId", ctrl.Cart.RemoveItem)
		cart.DELETE("/cart", ctrl.Cart.ClearCart)

		cart.POST("/checkout", ctrl.Checkout.Checkout)
	}
}
