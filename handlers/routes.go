package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the health check and the API on r
func RegisterRoutes(r gin.IRouter, laws *LawHandler, sessions *SessionHandler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	{
		api.GET("/categories", laws.ListCategories)
		api.GET("/laws", laws.SearchLaws)

		api.POST("/sessions", sessions.CreateSession)
		api.GET("/sessions/:id", sessions.GetSession)
		api.DELETE("/sessions/:id", sessions.DeleteSession)
		api.POST("/sessions/:id/search", sessions.Search)
		api.POST("/sessions/:id/sort", sessions.Sort)
		api.POST("/sessions/:id/sort/reset", sessions.ResetSort)
		api.POST("/sessions/:id/summary", sessions.Summarize)
		api.POST("/sessions/:id/qa", sessions.Ask)
		api.POST("/sessions/:id/qa/questions", sessions.SubmitQuestion)
		api.DELETE("/sessions/:id/panel", sessions.ClosePanel)
	}
}
