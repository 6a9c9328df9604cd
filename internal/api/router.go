package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the session and run handlers onto a gin engine
func NewRouter(sessions *SessionHandler, runs *RunHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/sessions", sessions.CreateSession)
		api.GET("/sessions/:id", sessions.GetSession)
		api.DELETE("/sessions/:id", sessions.DeleteSession)
		api.POST("/sessions/:id/select", sessions.SelectArm)
		api.POST("/sessions/:id/update", sessions.Update)

		api.POST("/runs", runs.Evaluate)
		api.GET("/runs", runs.ListRuns)
		api.GET("/runs/:id", runs.GetRun)
	}
	return r
}
