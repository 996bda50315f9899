package controllers

import (
	redis_models "Wordrush/models/redis"
	"Wordrush/services/scores"
	"Wordrush/utils"
	"Wordrush/utils/apperrors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type scoreCounters struct {
	Wins   *int `json:"wins" binding:"omitempty,min=0"`
	Losses *int `json:"losses" binding:"omitempty,min=0"`
	Draws  *int `json:"draws" binding:"omitempty,min=0"`
}

func (s scoreCounters) update() redis_models.ScoreUpdate {
	return redis_models.ScoreUpdate{Wins: s.Wins, Losses: s.Losses, Draws: s.Draws}
}

type teamScoreRequest struct {
	RoomID string `json:"room_id" binding:"required"`
	TeamID string `json:"team_id" binding:"required"`
	scoreCounters
}

func GetUserScore(svc *scores.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		score, err := svc.GetUserScore(c.Request.Context(), c.Param("userId"))
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, score)
	}
}

// UpdateUserScore replaces the counters present in the body. Admin only.
func UpdateUserScore(svc *scores.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req scoreCounters
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, apperrors.FromBinding(err))
			return
		}
		score, err := svc.UpdateUserScore(c.Request.Context(), c.Param("userId"), req.update())
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, score)
	}
}

func UpdateTeamScore(svc *scores.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req teamScoreRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, apperrors.FromBinding(err))
			return
		}
		score, err := svc.UpdateTeamScore(c.Request.Context(), req.RoomID, req.TeamID, req.update())
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, score)
	}
}

// ResetUserScore drops the counters of a user. Admin only.
func ResetUserScore(svc *scores.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.ResetUserScore(c.Request.Context(), c.Param("userId")); err != nil {
			utils.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func GetRoomScores(svc *scores.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListRoomScores(c.Request.Context(), c.Param("roomId"))
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func GetTeamScore(svc *scores.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		score, err := svc.GetTeamScore(c.Request.Context(), c.Param("roomId"), c.Param("teamId"))
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, score)
	}
}

func ResetTeamScore(svc *scores.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.ResetTeamScore(c.Request.Context(), c.Param("roomId"), c.Param("teamId")); err != nil {
			utils.Fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
