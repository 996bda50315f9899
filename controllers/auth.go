package controllers

import (
	"Wordrush/middleware"
	"Wordrush/models"
	"Wordrush/models/postgres"
	"Wordrush/services/session"
	"Wordrush/utils"
	"Wordrush/utils/apperrors"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*postgres.User, error)
	Create(ctx context.Context, email, username, passwordHash string) (*postgres.User, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// AuthController issues and revokes sessions
type AuthController struct {
	Users      UserStore
	Sessions   *session.Manager
	Hasher     PasswordHasher
	CookieName string
	// Secure cookies, only sent over HTTPS
	Secure bool
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

var errInvalidCredentials = apperrors.ErrUnauthorized.WithMessage("Invalid email or password")

func (a *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, apperrors.FromBinding(err))
		return
	}
	hash, err := a.Hasher.Hash(req.Password)
	if err != nil {
		utils.Fail(c, apperrors.Unexpected(err))
		return
	}
	user, err := a.Users.Create(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)), strings.TrimSpace(req.Username), hash)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	log.Info().Str("user_id", user.ID).Msg("[AUTH] User registered")
	a.startSession(c, http.StatusCreated, user)
}

func (a *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, apperrors.FromBinding(err))
		return
	}
	user, err := a.Users.FindByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			err = errInvalidCredentials
		}
		utils.Fail(c, err)
		return
	}
	if err := a.Hasher.Compare(user.PasswordHash, req.Password); err != nil {
		utils.Fail(c, errInvalidCredentials)
		return
	}
	a.startSession(c, http.StatusOK, user)
}

func (a *AuthController) startSession(c *gin.Context, status int, user *postgres.User) {
	token, err := a.Sessions.CreateSession(c.Request.Context(), session.Identity{
		UserID:       user.ID,
		Email:        user.Email,
		Username:     user.Username,
		RoleName:     user.Role.Name,
		RolePriority: user.Role.Priority,
	}, 0)
	if err != nil {
		utils.Fail(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.CookieName, token, int(a.Sessions.DefaultTTL().Seconds()), "/", "", a.Secure, true)
	c.JSON(status, sessionResponse{User: models.UserOf(user), Token: token})
}

// Logout deletes the session, if any. Logging out twice is not an error.
func (a *AuthController) Logout(c *gin.Context) {
	if token := middleware.TokenFromRequest(c, a.CookieName); token != "" {
		if err := a.Sessions.DeleteSession(c.Request.Context(), token); err != nil {
			utils.Fail(c, err)
			return
		}
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.CookieName, "", -1, "/", "", a.Secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Successfully logged out"})
}

func (a *AuthController) Me(c *gin.Context) {
	c.JSON(http.StatusOK, models.UserOfSession(middleware.SessionFrom(c)))
}
