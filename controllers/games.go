package controllers

import (
	"Wordrush/services/games"
	"Wordrush/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

func GetGames(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListGames(c.Request.Context())
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetGame(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		game, err := svc.GetGame(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, game)
	}
}

// GetRoomGame returns the latest game played in a room
func GetRoomGame(svc *games.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		game, err := svc.GameOfRoom(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, game)
	}
}
