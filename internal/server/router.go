package server

import (
	"auction-house/internal/hub"
	"auction-house/internal/identity"
	handler "auction-house/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(biddingService handler.BiddingServiceInterface, adminService handler.AdminServiceInterface, notifications *hub.Hub, resolver identity.Resolver) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	biddingHandler := handler.NewBiddingHandler(biddingService)
	adminHandler := handler.NewAdminHandler(adminService)
	wsHandler := handler.NewWSHandler(notifications)

	// Live updates: anyone may watch a listing.
	router.GET("/ws", wsHandler.ServeWS)

	bids := router.Group("/bids", AuthMiddleware(resolver))
	{
		bids.POST("", biddingHandler.RecordBidHandler)
	}

	listings := router.Group("/listings")
	{
		listings.GET("", biddingHandler.ListListingsHandler)
		listings.GET("/:listing_id/bids", biddingHandler.GetBidsByListingHandler)
		listings.GET("/:listing_id/highest", biddingHandler.GetHighestBidHandler)
	}

	adminRoutes := router.Group("/admin", AuthMiddleware(resolver), RequireAdmin())
	{
		adminRoutes.GET("/listings", adminHandler.DashboardHandler)
		adminRoutes.POST("/bids/:bid_id/approve", adminHandler.ApproveBidHandler)
		adminRoutes.POST("/broadcast", adminHandler.BroadcastHandler)
	}

	return router
}
