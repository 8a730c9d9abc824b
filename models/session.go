package models

import "time"

// StatuteText is the extracted, cleaned and truncated body of one law
type StatuteText struct {
	LawID             string    `json:"law_id"`
	Text              string    `json:"text"`
	SourceWasFallback bool      `json:"source_was_fallback"`
	FetchedAt         time.Time `json:"fetched_at"`
}

// ChatRole is the speaker of a chat turn
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatTurn is one message of a Q&A session
type ChatTurn struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// Phase is the state of the AI panel interaction
type Phase string

const (
	PhaseIdle           Phase = "idle"
	PhaseSummaryLoading Phase = "summary_loading"
	PhaseSummaryShown   Phase = "summary_shown"
	PhaseQALoading      Phase = "qa_loading"
	PhaseQAActive       Phase = "qa_active"
)

// Panel is the AI panel currently shown
type Panel string

const (
	PanelNone    Panel = "none"
	PanelSummary Panel = "summary"
	PanelQA      Panel = "qa"
)

// SessionState is the AI panel state of one user session.
// At most one of the summary and Q&A panels is active.
type SessionState struct {
	Phase         Phase        `json:"phase"`
	ActivePanel   Panel        `json:"active_panel"`
	SummaryTarget string       `json:"summary_target,omitempty"`
	Summary       string       `json:"summary,omitempty"`
	QATarget      string       `json:"qa_target,omitempty"`
	QAName        string       `json:"qa_name,omitempty"`
	QAContext     *StatuteText `json:"-"`
	Loading       bool         `json:"loading"`
	History       []ChatTurn   `json:"history"`
	// Epoch increases on every summary or Q&A start; results tagged with an older epoch are stale
	Epoch  uint64 `json:"epoch"`
	Notice string `json:"notice,omitempty"`
}

// NewSessionState returns the idle state
func NewSessionState() SessionState {
	return SessionState{
		Phase:       PhaseIdle,
		ActivePanel: PanelNone,
		History:     []ChatTurn{},
	}
}
