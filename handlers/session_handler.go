package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"egovlaw-backend/models"
	"egovlaw-backend/pkg/logger"
	"egovlaw-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler serves the stateful browse sessions
type SessionHandler struct {
	store *service.SessionStore
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(store *service.SessionStore) *SessionHandler {
	return &SessionHandler{store: store}
}

type turnView struct {
	models.ChatTurn
	Citations []service.Citation `json:"citations,omitempty"`
}

type panelView struct {
	models.SessionState
	History            []turnView `json:"history"`
	CitationDisclaimer string     `json:"citation_disclaimer,omitempty"`
}

type sessionView struct {
	SessionID uuid.UUID            `json:"session_id"`
	Browse    service.BrowseState  `json:"browse"`
	Table     models.FilteredTable `json:"table"`
	Panel     panelView            `json:"panel"`
	AIEnabled bool                 `json:"ai_enabled"`
}

// newPanelView attaches resolved citations to every assistant turn
func newPanelView(svc *service.SessionService, state models.SessionState) panelView {
	view := panelView{SessionState: state, History: make([]turnView, 0, len(state.History))}
	for _, turn := range state.History {
		tv := turnView{ChatTurn: turn}
		if turn.Role == models.RoleAssistant {
			tv.Citations = svc.Citations(turn.Content)
			if len(tv.Citations) > 0 {
				view.CitationDisclaimer = service.CitationDisclaimer
			}
		}
		view.History = append(view.History, tv)
	}
	return view
}

func newSessionView(id uuid.UUID, svc *service.SessionService, snap service.Snapshot) sessionView {
	return sessionView{
		SessionID: id,
		Browse:    snap.Browse,
		Table:     snap.Table,
		Panel:     newPanelView(svc, snap.Panel),
		AIEnabled: snap.AIEnabled,
	}
}

// session resolves the :id parameter and tags the request context with it.
// It writes the error response itself and reports whether to continue.
func (h *SessionHandler) session(c *gin.Context) (uuid.UUID, *service.SessionService, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid session ID format")
		return uuid.Nil, nil, false
	}
	svc, err := h.store.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return uuid.Nil, nil, false
	}
	ctx := context.WithValue(c.Request.Context(), logger.SessionIDKey, id.String())
	c.Request = c.Request.WithContext(ctx)
	return id, svc, true
}

// CreateSession handles POST /api/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	id, svc := h.store.Create()
	logger.WithContext(c.Request.Context()).Info("session created")
	respondOK(c, http.StatusCreated, newSessionView(id, svc, svc.Snapshot()))
}

// GetSession handles GET /api/sessions/:id
func (h *SessionHandler) GetSession(c *gin.Context) {
	id, svc, ok := h.session(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, newSessionView(id, svc, svc.Snapshot()))
}

// DeleteSession handles DELETE /api/sessions/:id
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid session ID format")
		return
	}
	if err := h.store.Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"session_id": id})
}

// SearchRequest is the body of POST /api/sessions/:id/search
type SearchRequest struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Number   string `json:"number"`
	Keyword  string `json:"keyword"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// Search handles POST /api/sessions/:id/search
func (h *SessionHandler) Search(c *gin.Context) {
	id, svc, ok := h.session(c)
	if !ok {
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	from, err := parseDate(req.From)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	to, err := parseDate(req.To)
	if err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	category := models.LawCategory(req.Category)
	if category == "" {
		category = models.CategoryAll
	}

	snap, err := svc.Search(c.Request.Context(), service.SearchRequest{
		Category: category,
		Filters: models.SearchFilters{
			NameQuery:   req.Name,
			NumberQuery: req.Number,
			Keyword:     req.Keyword,
			DateFrom:    from,
			DateTo:      to,
		},
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, newSessionView(id, svc, *snap))
}

// SortRequest is the body of POST /api/sessions/:id/sort
type SortRequest struct {
	Key string `json:"key" binding:"required"`
}

// Sort handles POST /api/sessions/:id/sort
func (h *SessionHandler) Sort(c *gin.Context) {
	_, svc, ok := h.session(c)
	if !ok {
		return
	}
	var req SortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	table, err := svc.Sort(models.SortKey(req.Key))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, table)
}

// ResetSort handles POST /api/sessions/:id/sort/reset
func (h *SessionHandler) ResetSort(c *gin.Context) {
	_, svc, ok := h.session(c)
	if !ok {
		return
	}
	table, err := svc.ResetSort()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, table)
}

// LawRequest is the body of the summary and Q&A endpoints
type LawRequest struct {
	LawID   string `json:"law_id" binding:"required"`
	LawName string `json:"law_name"`
}

// Summarize handles POST /api/sessions/:id/summary
func (h *SessionHandler) Summarize(c *gin.Context) {
	_, svc, ok := h.session(c)
	if !ok {
		return
	}
	var req LawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	state, err := svc.Summarize(c.Request.Context(), req.LawID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, newPanelView(svc, state))
}

// Ask handles POST /api/sessions/:id/qa
func (h *SessionHandler) Ask(c *gin.Context) {
	_, svc, ok := h.session(c)
	if !ok {
		return
	}
	var req LawRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	state, err := svc.Ask(c.Request.Context(), req.LawID, req.LawName)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, newPanelView(svc, state))
}

// QuestionRequest is the body of POST /api/sessions/:id/qa/questions
type QuestionRequest struct {
	Question string `json:"question" binding:"required"`
}

// SubmitQuestion handles POST /api/sessions/:id/qa/questions
func (h *SessionHandler) SubmitQuestion(c *gin.Context) {
	_, svc, ok := h.session(c)
	if !ok {
		return
	}
	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	state, err := svc.SubmitQuestion(c.Request.Context(), req.Question)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, newPanelView(svc, state))
}

// ClosePanel handles DELETE /api/sessions/:id/panel
func (h *SessionHandler) ClosePanel(c *gin.Context) {
	_, svc, ok := h.session(c)
	if !ok {
		return
	}
	respondOK(c, http.StatusOK, newPanelView(svc, svc.ClosePanel(c.Request.Context())))
}
