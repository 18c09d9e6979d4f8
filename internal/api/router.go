package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Gopher0727/Concord/internal/handler"
	"github.com/Gopher0727/Concord/internal/middlewares"
	"github.com/Gopher0727/Concord/internal/service"
	jwtmw "github.com/Gopher0727/Concord/middleware/jwt"
	ratelimitmw "github.com/Gopher0727/Concord/pkg/middlewares"
	"github.com/Gopher0727/Concord/utils/ratelimit"
)

// RegisterRoutes registers all API routes
func RegisterRoutes(
	r *gin.Engine,
	resolver *jwtmw.Resolver,
	profiles service.IProfileService,
	serverHandler *handler.ServerHandler,
	channelHandler *handler.ChannelHandler,
	memberHandler *handler.MemberHandler,
	searchHandler *handler.SearchHandler,
	limiter ratelimit.Limiter,
	requestsPerMinute int,
) {
	r.Use(middlewares.TraceMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	api.Use(middlewares.AuthMiddleware(resolver, profiles))
	if limiter != nil {
		api.Use(ratelimitmw.RateLimitMiddleware(limiter, requestsPerMinute))
	}
	{
		servers := api.Group("/servers")
		{
			servers.POST("", serverHandler.CreateServer)
			servers.GET("", serverHandler.ListServers)
			servers.POST("/join", serverHandler.JoinServer)
			servers.GET("/:id", serverHandler.GetServer)
			servers.PATCH("/:id", serverHandler.UpdateServer)
			servers.DELETE("/:id", serverHandler.DeleteServer)
			servers.PATCH("/:id/invite-code", serverHandler.RotateInviteCode)
			servers.PATCH("/:id/leave", serverHandler.LeaveServer)
			servers.POST("/:id/channels", channelHandler.CreateChannel)
			servers.DELETE("/:id/members/:memberId", memberHandler.KickMember)
			servers.PATCH("/:id/members/:memberId", memberHandler.ChangeMemberRole)
			servers.GET("/:id/index", searchHandler.ServerIndex)
		}
	}
}
