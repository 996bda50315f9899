package routes

import (
	"Wordrush/controllers"
	"Wordrush/middleware"
	"Wordrush/services/games"
	"Wordrush/services/rooms"
	"Wordrush/services/scores"
	"Wordrush/services/session"
	"Wordrush/services/teams"
	"Wordrush/utils"

	"github.com/gin-gonic/gin"
)

// Dependencies are what the HTTP surface is built from
type Dependencies struct {
	Auth          *controllers.AuthController
	Sessions      *session.Manager
	CookieName    string
	AdminPriority int

	Rooms  *rooms.Service
	Teams  *teams.Service
	Games  *games.Service
	Scores *scores.Service
}

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	// utils global
	router.Use(utils.ErrorHandler())

	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.POST("/auth/register", deps.Auth.Register)
	api.POST("/auth/login", deps.Auth.Login)
	api.POST("/auth/logout", deps.Auth.Logout)

	authenticated := api.Group("/")
	authenticated.Use(middleware.AuthRequired(deps.Sessions, deps.CookieName))
	{
		authenticated.GET("/auth/me", deps.Auth.Me)

		authenticated.GET("/rooms", controllers.GetAvailableRooms(deps.Rooms))
		authenticated.GET("/rooms/all", controllers.GetAllRooms(deps.Rooms))
		authenticated.GET("/rooms/:id", controllers.GetRoom(deps.Rooms))
		authenticated.GET("/rooms/:id/game", controllers.GetRoomGame(deps.Games))

		team := authenticated.Group("/team")
		{
			team.GET("", controllers.GetTeams(deps.Teams))
			team.POST("/create", controllers.CreateTeam(deps.Teams))
			team.POST("/join", controllers.JoinTeam(deps.Teams))
			team.POST("/leave", controllers.LeaveTeam(deps.Teams))
			team.POST("/message", controllers.SendTeamMessage(deps.Teams))
			team.GET("/:teamId/history", controllers.GetTeamHistory(deps.Teams))
		}

		authenticated.GET("/games", controllers.GetGames(deps.Games))
		authenticated.GET("/games/:id", controllers.GetGame(deps.Games))

		authenticated.GET("/scores/users/:userId", controllers.GetUserScore(deps.Scores))
		authenticated.GET("/scores/teams/:roomId", controllers.GetRoomScores(deps.Scores))
		authenticated.GET("/scores/teams/:roomId/:teamId", controllers.GetTeamScore(deps.Scores))

		admin := authenticated.Group("/scores")
		admin.Use(middleware.RequireMinPriority(deps.AdminPriority))
		{
			admin.PUT("/users/:userId", controllers.UpdateUserScore(deps.Scores))
			admin.DELETE("/users/:userId", controllers.ResetUserScore(deps.Scores))
			admin.PUT("/teams", controllers.UpdateTeamScore(deps.Scores))
			admin.DELETE("/teams/:roomId/:teamId", controllers.ResetTeamScore(deps.Scores))
		}
	}
}
