package handlers

import (
	"errors"
	"net/http"

	"egovlaw-backend/models"
	"egovlaw-backend/repository"
	"egovlaw-backend/service"

	"github.com/gin-gonic/gin"
)

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps service and repository errors onto the envelope
func respondServiceError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		respondError(c, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found")
	case errors.Is(err, repository.ErrInvalidCategory),
		errors.Is(err, models.ErrInvalidDateRange),
		errors.Is(err, service.ErrInvalidSortKey),
		errors.Is(err, service.ErrEmptyQuestion),
		errors.Is(err, repository.ErrMissingLawID):
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, service.ErrAIDisabled):
		respondError(c, http.StatusServiceUnavailable, "AI_DISABLED", service.MsgAIDisabled)
	case errors.Is(err, service.ErrNoActiveQA),
		errors.Is(err, service.ErrQuestionPending),
		errors.Is(err, service.ErrSessionNotSearched):
		respondError(c, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, repository.ErrLawNotFound):
		respondError(c, http.StatusNotFound, "LAW_NOT_FOUND", err.Error())
	case errors.Is(err, repository.ErrNetwork),
		errors.Is(err, repository.ErrAPI),
		errors.Is(err, repository.ErrParse),
		errors.Is(err, repository.ErrAllCategoriesFailed),
		errors.Is(err, repository.ErrNotAcceptable):
		respondError(c, http.StatusBadGateway, "UPSTREAM_ERROR", err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}
