package routes

import (
	"net/http"

	"github.com/cardhaus/giveaway-backend/internal/config"
	"github.com/cardhaus/giveaway-backend/internal/handlers"
	"github.com/cardhaus/giveaway-backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies groups the handlers the router needs
type HandlerDependencies struct {
	PickHandler     *handlers.PickHandler
	GiveawayHandler *handlers.GiveawayHandler
	UserHandler     *handlers.UserHandler
	AuthHandler     *handlers.AuthHandler
}

// SetupRouter configures the gin router with all application routes
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(cfg))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		v1.POST("/auth/login", deps.AuthHandler.Login)

		v1.GET("/giveaways", deps.GiveawayHandler.GetGiveaways)
		v1.GET("/giveaways/:id", deps.GiveawayHandler.GetGiveawayByID)
		v1.GET("/giveaways/:id/slots/:slot", deps.PickHandler.GetSlotSnapshot)
		v1.GET("/giveaways/:id/auto-pick", deps.PickHandler.SuggestAutoPick)
		v1.POST("/giveaways/:id/picks", deps.PickHandler.CreatePick)
		v1.POST("/giveaways/:id/picks/bulk", deps.PickHandler.CreateBulkPicks)

		v1.GET("/users/:id", deps.UserHandler.GetUserByID)
		v1.GET("/users/:id/picks", deps.UserHandler.GetUserPicks)
		v1.GET("/users/:id/wins", deps.UserHandler.GetUserWins)
	}

	admin := router.Group("/api/v1")
	admin.Use(middleware.JWTAuthMiddleware(cfg))
	{
		admin.POST("/auth/register", deps.AuthHandler.Register)

		admin.POST("/giveaways", deps.GiveawayHandler.CreateGiveaway)
		admin.POST("/giveaways/:id/draw", deps.GiveawayHandler.RecordDrawResult)
		admin.GET("/giveaways/:id/winners", deps.GiveawayHandler.GetWinners)
		admin.POST("/giveaways/:id/close", deps.GiveawayHandler.CloseGiveaway)
		admin.POST("/giveaways/:id/cancel", deps.GiveawayHandler.CancelGiveaway)

		admin.GET("/users", deps.UserHandler.GetAllUsers)
		admin.GET("/users/count", deps.UserHandler.GetUserCount)
		admin.POST("/users", deps.UserHandler.CreateUser)
		admin.POST("/users/:id/credits", deps.UserHandler.GrantCredits)
	}

	return router
}
