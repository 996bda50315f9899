package controllers

import (
	"Wordrush/middleware"
	"Wordrush/services/teams"
	"Wordrush/utils"
	"Wordrush/utils/apperrors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type createTeamRequest struct {
	Name string `json:"name" binding:"required"`
}

type teamRequest struct {
	TeamID string `json:"team_id" binding:"required"`
}

type teamMessageRequest struct {
	TeamID string `json:"team_id" binding:"required"`
	Text   string `json:"text" binding:"required"`
}

type historyQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=200"`
}

func GetTeams(svc *teams.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.GetAll(c.Request.Context())
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// CreateTeam creates a chat team hosted by the caller
func CreateTeam(svc *teams.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createTeamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, apperrors.FromBinding(err))
			return
		}
		user := middleware.SessionFrom(c)
		team, err := svc.CreateTeam(c.Request.Context(), req.Name, user.UserID, user.Username)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, team)
	}
}

func JoinTeam(svc *teams.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req teamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, apperrors.FromBinding(err))
			return
		}
		user := middleware.SessionFrom(c)
		team, err := svc.Join(c.Request.Context(), req.TeamID, user.UserID, user.Username)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, team)
	}
}

// LeaveTeam answers with the team, or null when the caller was the last
// member and the team is gone
func LeaveTeam(svc *teams.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req teamRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, apperrors.FromBinding(err))
			return
		}
		user := middleware.SessionFrom(c)
		team, err := svc.Leave(c.Request.Context(), req.TeamID, user.UserID, user.Username)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"team": team})
	}
}

func SendTeamMessage(svc *teams.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req teamMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, apperrors.FromBinding(err))
			return
		}
		user := middleware.SessionFrom(c)
		msg, err := svc.SendMessage(c.Request.Context(), "", req.TeamID, user.UserID, user.Username, req.Text)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, msg)
	}
}

func GetTeamHistory(svc *teams.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var query historyQuery
		if err := c.ShouldBindQuery(&query); err != nil {
			utils.Fail(c, apperrors.FromBinding(err))
			return
		}
		messages, err := svc.History(c.Request.Context(), c.Param("teamId"), query.Limit)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		c.JSON(http.StatusOK, messages)
	}
}
