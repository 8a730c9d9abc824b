package service

import (
	"fmt"
	"slices"
	"strings"

	"egovlaw-backend/models"
)

// Event is a user action or the result of an executed command
type Event interface{ isEvent() }

// Command is a side effect requested by a transition
type Command interface{ isCommand() }

// SearchStarted resets the panels before a new top-level search
type SearchStarted struct{}

// SummarizeRequested opens the summary panel for a law
type SummarizeRequested struct{ LawID string }

// AskRequested opens the Q&A panel for a law
type AskRequested struct{ LawID, LawName string }

// TextLoaded delivers the statute text fetched for Epoch. A nil Text with a
// nil Err means the law had no extractable text.
type TextLoaded struct {
	Epoch uint64
	LawID string
	Text  *models.StatuteText
	Err   error
}

// SummaryReady delivers the generated summary
type SummaryReady struct {
	Epoch   uint64
	LawID   string
	Summary string
}

// QuestionSubmitted asks a question in the active Q&A panel
type QuestionSubmitted struct{ Question string }

// AnswerReady delivers the assistant's answer
type AnswerReady struct {
	Epoch  uint64
	LawID  string
	Answer string
}

// PanelClosed closes whichever AI panel is open
type PanelClosed struct{}

func (SearchStarted) isEvent()      {}
func (SummarizeRequested) isEvent() {}
func (AskRequested) isEvent()       {}
func (TextLoaded) isEvent()         {}
func (SummaryReady) isEvent()       {}
func (QuestionSubmitted) isEvent()  {}
func (AnswerReady) isEvent()        {}
func (PanelClosed) isEvent()        {}

// FetchText loads the statute text of LawID
type FetchText struct {
	Epoch uint64
	LawID string
}

// Summarize generates a summary of Text
type Summarize struct {
	Epoch uint64
	LawID string
	Text  string
}

// Chat answers Question given the statute Context and prior History
type Chat struct {
	Epoch    uint64
	LawID    string
	Context  string
	History  []models.ChatTurn
	Question string
}

func (FetchText) isCommand() {}
func (Summarize) isCommand() {}
func (Chat) isCommand()      {}

// Reduce is the session transition function. It never performs I/O; the
// returned commands are executed by the caller and their results fed back
// as events. Results whose epoch or target no longer match are dropped.
func Reduce(state models.SessionState, ev Event) (models.SessionState, []Command) {
	switch e := ev.(type) {
	case SearchStarted:
		next := resetPanels(state)
		next.Epoch++
		return next, nil

	case PanelClosed:
		next := resetPanels(state)
		next.Epoch++
		return next, nil

	case SummarizeRequested:
		if e.LawID == "" {
			return state, nil
		}
		if state.SummaryTarget == e.LawID &&
			(state.Phase == models.PhaseSummaryLoading || state.Phase == models.PhaseSummaryShown) {
			return state, nil
		}
		next := resetPanels(state)
		next.Epoch++
		next.Phase = models.PhaseSummaryLoading
		next.ActivePanel = models.PanelSummary
		next.SummaryTarget = e.LawID
		next.Loading = true
		return next, []Command{FetchText{Epoch: next.Epoch, LawID: e.LawID}}

	case AskRequested:
		if e.LawID == "" {
			return state, nil
		}
		if state.QATarget == e.LawID &&
			(state.Phase == models.PhaseQALoading || state.Phase == models.PhaseQAActive) {
			return state, nil
		}
		next := resetPanels(state)
		next.Epoch++
		next.Phase = models.PhaseQALoading
		next.ActivePanel = models.PanelQA
		next.QATarget = e.LawID
		next.QAName = e.LawName
		next.Loading = true
		return next, []Command{FetchText{Epoch: next.Epoch, LawID: e.LawID}}

	case TextLoaded:
		if e.Epoch != state.Epoch || !state.Loading {
			return state, nil
		}
		switch state.Phase {
		case models.PhaseSummaryLoading:
			return textLoadedForSummary(state, e)
		case models.PhaseQALoading:
			return textLoadedForQA(state, e)
		}
		return state, nil

	case SummaryReady:
		if e.Epoch != state.Epoch || state.Phase != models.PhaseSummaryLoading || e.LawID != state.SummaryTarget {
			return state, nil
		}
		next := state
		next.Phase = models.PhaseSummaryShown
		next.Summary = e.Summary
		next.Loading = false
		return next, nil

	case QuestionSubmitted:
		question := strings.TrimSpace(e.Question)
		if state.Phase != models.PhaseQAActive || state.Loading || state.QAContext == nil || question == "" {
			return state, nil
		}
		prior := slices.Clone(state.History)
		next := state
		next.History = append(slices.Clone(state.History), models.ChatTurn{Role: models.RoleUser, Content: question})
		next.Loading = true
		return next, []Command{Chat{
			Epoch:    state.Epoch,
			LawID:    state.QATarget,
			Context:  state.QAContext.Text,
			History:  prior,
			Question: question,
		}}

	case AnswerReady:
		if e.Epoch != state.Epoch || state.Phase != models.PhaseQAActive || !state.Loading || e.LawID != state.QATarget {
			return state, nil
		}
		next := state
		next.History = append(slices.Clone(state.History), models.ChatTurn{Role: models.RoleAssistant, Content: e.Answer})
		next.Loading = false
		return next, nil
	}
	return state, nil
}

func textLoadedForSummary(state models.SessionState, e TextLoaded) (models.SessionState, []Command) {
	if e.LawID != state.SummaryTarget {
		return state, nil
	}
	if e.Err != nil {
		next := state
		next.Phase = models.PhaseSummaryShown
		next.Summary = fmt.Sprintf("Failed to fetch statute text for summary: %v", e.Err)
		next.Loading = false
		return next, nil
	}
	text := ""
	if e.Text != nil {
		text = e.Text.Text
	}
	return state, []Command{Summarize{Epoch: state.Epoch, LawID: e.LawID, Text: text}}
}

func textLoadedForQA(state models.SessionState, e TextLoaded) (models.SessionState, []Command) {
	if e.LawID != state.QATarget {
		return state, nil
	}
	if e.Err != nil || e.Text == nil || e.Text.Text == "" {
		next := resetPanels(state)
		if e.Err != nil {
			next.Notice = fmt.Sprintf("Failed to fetch statute text for Q&A (%s): %v", e.LawID, e.Err)
		} else {
			next.Notice = fmt.Sprintf("No statute text found for Q&A (%s).", e.LawID)
		}
		return next, nil
	}
	next := state
	next.Phase = models.PhaseQAActive
	next.QAContext = e.Text
	next.Loading = false
	return next, nil
}

// resetPanels returns the idle state, keeping only the epoch counter
func resetPanels(state models.SessionState) models.SessionState {
	next := models.NewSessionState()
	next.Epoch = state.Epoch
	return next
}
