package server

import (
	"auction-storefront/internal/models"
	biddinghandler "auction-storefront/services/bidding/handler"
	storefront "auction-storefront/services/storefront/handler"

	"github.com/gin-gonic/gin"
)

// Services are the collaborators the HTTP API is served from
type Services struct {
	Auth      Authenticator
	Identity  storefront.AuthService
	Bidding   biddinghandler.BiddingServiceInterface
	Catalog   storefront.CatalogService
	Cart      storefront.CartService
	Checkout  storefront.CheckoutService
	Dashboard storefront.DashboardService
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(s Services) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	router.Use(AuthMiddleware(s.Auth))

	biddingHandler := biddinghandler.NewBiddingHandler(s.Bidding)
	authHandler := storefront.NewAuthHandler(s.Identity)
	catalogHandler := storefront.NewCatalogHandler(s.Catalog)
	cartHandler := storefront.NewCartHandler(s.Cart)
	checkoutHandler := storefront.NewCheckoutHandler(s.Checkout)
	dashboardHandler := storefront.NewDashboardHandler(s.Dashboard)

	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.RegisterHandler)
		auth.POST("/login", authHandler.LoginHandler)
		auth.POST("/logout", RequireAuth, authHandler.LogoutHandler)
		auth.GET("/me", RequireAuth, authHandler.MeHandler)
	}

	products := router.Group("/products")
	{
		products.GET("", catalogHandler.ListProductsHandler)
		products.GET("/featured", catalogHandler.FeaturedHandler)
		products.GET("/:product_id", catalogHandler.GetProductHandler)
	}
	router.GET("/categories", catalogHandler.CategoriesHandler)

	auctions := router.Group("/auctions")
	{
		auctions.GET("/:item_id", biddingHandler.GetAuctionStatusHandler)
		auctions.GET("/:item_id/outcome", RequireAuth, biddingHandler.GetOutcomeHandler)
	}

	bids := router.Group("/bids")
	{
		bids.POST("", RequireAuth, biddingHandler.RecordBidHandler)
	}

	items := router.Group("/items")
	{
		items.GET("/:item_id/bids", biddingHandler.GetBidsByItemHandler)
		items.GET("/:item_id/winning", biddingHandler.GetWinningBidHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/:user_id/items", biddingHandler.GetItemsByUserHandler)
	}

	cart := router.Group("/cart", RequireAuth)
	{
		cart.GET("", cartHandler.GetCartHandler)
		cart.DELETE("", cartHandler.ClearCartHandler)
		cart.POST("/items", cartHandler.AddItemHandler)
		cart.PATCH("/items/:item_id", cartHandler.UpdateItemHandler)
		cart.DELETE("/items/:item_id", cartHandler.RemoveItemHandler)
	}

	checkout := router.Group("/checkout", RequireAuth)
	{
		checkout.POST("/cart", checkoutHandler.CheckoutCartHandler)
		checkout.GET("/:product_id", checkoutHandler.QuoteHandler)
		checkout.POST("/:product_id", checkoutHandler.PlaceOrderHandler)
	}

	account := router.Group("/account", RequireAuth)
	{
		account.GET("/orders", checkoutHandler.OrdersHandler)
		account.POST("/seller-request", dashboardHandler.RequestSellerHandler)
	}

	seller := router.Group("/seller", RequireRole(models.RoleSeller, models.RoleAdmin))
	{
		seller.GET("/products", dashboardHandler.SellerProductsHandler)
		seller.POST("/products", dashboardHandler.CreateProductHandler)
		seller.PUT("/products/:product_id", dashboardHandler.UpdateProductHandler)
		seller.DELETE("/products/:product_id", dashboardHandler.DeleteProductHandler)
		seller.GET("/analytics", dashboardHandler.SellerAnalyticsHandler)
	}

	admin := router.Group("/admin", RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", dashboardHandler.UsersHandler)
		admin.PATCH("/users/:user_id/role", dashboardHandler.SetUserRoleHandler)
		admin.PATCH("/users/:user_id/status", dashboardHandler.SetUserStatusHandler)
		admin.GET("/seller-requests", dashboardHandler.SellerRequestsHandler)
		admin.POST("/seller-requests/:request_id/decision", dashboardHandler.DecideSellerRequestHandler)
		admin.DELETE("/products/:product_id", dashboardHandler.DeleteProductHandler)
		admin.GET("/analytics", dashboardHandler.SiteAnalyticsHandler)
	}

	return router
}
