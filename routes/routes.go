package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/roshshop/backend/controllers"
	"github.com/roshshop/backend/middleware"
)

type Controllers struct {
	Cart     *controllers.CartController
	Product  *controllers.ProductController
	Order    *controllers.OrderController
	Checkout *controllers.CheckoutController
	Payment  *controllers.PaymentController
}

func Register(r *gin.Engine, ctrl Controllers, jwtSecret string) {
	writeLimit := middleware.RateLimitMiddleware(rate.Every(time.Minute/100), 50)

	products := r.Group("/products")
	products.GET("", ctrl.Product.ListProducts)
	products.GET("/:id", ctrl.Product.GetProduct)

	admin := r.Group("/products")
	admin.Use(middleware.RequireAuth(jwtSecret), writeLimit)
	admin.POST("", ctrl.Product.CreateProduct)
	admin.PUT("/:id", ctrl.Product.UpdateProduct)
	admin.DELETE("/:id", ctrl.Product.DeleteProduct)

	cart := r.Group("/cart")
	cart.Use(middleware.Identify(jwtSecret))
	cart.GET("", ctrl.Cart.GetCart)
	cart.POST("/items", ctrl.Cart.AddItem)
	cart.PUT("/items/:product_id", ctrl.Cart.UpdateItem)
	cart.DELETE("/items/:product_id", ctrl.Cart.RemoveItem)
	cart.DELETE("", ctrl.Cart.ClearCart)
	cart.POST("/sync", middleware.RequireAuth(jwtSecret), ctrl.Cart.SyncCart)

	orders := r.Group("/orders")
	orders.Use(middleware.RequireAuth(jwtSecret))
	orders.POST("", writeLimit, ctrl.Order.CreateOrder)
	orders.GET("", ctrl.Order.GetOrders)
	orders.GET("/:id", ctrl.Order.GetOrderByID)

	checkout := r.Group("/checkout")
	checkout.Use(middleware.RequireAuth(jwtSecret), writeLimit)
	checkout.POST("/session", ctrl.Checkout.CreateCheckoutSession)

	r.POST("/webhooks/stripe", ctrl.Payment.StripeWebhook)
}
