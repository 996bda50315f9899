package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ping answers health checks
func Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
