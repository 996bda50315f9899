package controllers

import (
	"Wordrush/services/rooms"
	"Wordrush/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetAvailableRooms lists the rooms a player can still join
func GetAvailableRooms(svc *rooms.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListAvailableRooms(c.Request.Context())
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetAllRooms(svc *rooms.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListRooms(c.Request.Context())
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetRoom(svc *rooms.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		room, err := svc.GetRoom(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, room)
	}
}
