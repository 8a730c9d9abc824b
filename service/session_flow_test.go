package service

import (
	"testing"

	"egovlaw-backend/models"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceSummaryFlow(t *testing.T) {
	s := models.NewSessionState()

	s, cmds := Reduce(s, SummarizeRequested{LawID: "A"})
	assert.Equal(t, models.PhaseSummaryLoading, s.Phase)
	assert.Equal(t, models.PanelSummary, s.ActivePanel)
	assert.True(t, s.Loading)
	require.Equal(t, []Command{FetchText{Epoch: 1, LawID: "A"}}, cmds)

	s, cmds = Reduce(s, TextLoaded{Epoch: 1, LawID: "A", Text: &models.StatuteText{LawID: "A", Text: "本文"}})
	assert.Equal(t, models.PhaseSummaryLoading, s.Phase)
	require.Equal(t, []Command{Summarize{Epoch: 1, LawID: "A", Text: "本文"}}, cmds)

	s, cmds = Reduce(s, SummaryReady{Epoch: 1, LawID: "A", Summary: "要約"})
	assert.Empty(t, cmds)
	assert.Equal(t, models.PhaseSummaryShown, s.Phase)
	assert.Equal(t, "要約", s.Summary)
	assert.False(t, s.Loading)
}

func TestReduceSummaryWithoutTextStillSummarizes(t *testing.T) {
	s, _ := Reduce(models.NewSessionState(), SummarizeRequested{LawID: "A"})
	_, cmds := Reduce(s, TextLoaded{Epoch: s.Epoch, LawID: "A"})
	assert.Equal(t, []Command{Summarize{Epoch: s.Epoch, LawID: "A", Text: ""}}, cmds)
}

func TestReduceSummaryFetchError(t *testing.T) {
	s, _ := Reduce(models.NewSessionState(), SummarizeRequested{LawID: "A"})
	s, cmds := Reduce(s, TextLoaded{Epoch: s.Epoch, LawID: "A", Err: errUpstream})
	assert.Empty(t, cmds)
	assert.Equal(t, models.PhaseSummaryShown, s.Phase)
	assert.Equal(t, "Failed to fetch statute text for summary: connection reset", s.Summary)
}

func TestReduceQAFlow(t *testing.T) {
	s, cmds := Reduce(models.NewSessionState(), AskRequested{LawID: "A", LawName: "労働基準法"})
	assert.Equal(t, models.PhaseQALoading, s.Phase)
	assert.Equal(t, "労働基準法", s.QAName)
	require.Equal(t, []Command{FetchText{Epoch: 1, LawID: "A"}}, cmds)

	text := &models.StatuteText{LawID: "A", Text: "第一条 本文"}
	s, cmds = Reduce(s, TextLoaded{Epoch: 1, LawID: "A", Text: text})
	assert.Empty(t, cmds)
	assert.Equal(t, models.PhaseQAActive, s.Phase)
	assert.Same(t, text, s.QAContext)

	s, cmds = Reduce(s, QuestionSubmitted{Question: " 目的は? "})
	assert.True(t, s.Loading)
	assert.Equal(t, []models.ChatTurn{{Role: models.RoleUser, Content: "目的は?"}}, s.History)
	require.Len(t, cmds, 1)
	chat := cmds[0].(Chat)
	assert.Empty(t, chat.History)
	assert.Equal(t, "目的は?", chat.Question)
	assert.Equal(t, "第一条 本文", chat.Context)

	s, _ = Reduce(s, AnswerReady{Epoch: 1, LawID: "A", Answer: "最低基準 [Source: 第一条]"})
	assert.False(t, s.Loading)
	assert.Equal(t, models.PhaseQAActive, s.Phase)
	want := []models.ChatTurn{
		{Role: models.RoleUser, Content: "目的は?"},
		{Role: models.RoleAssistant, Content: "最低基準 [Source: 第一条]"},
	}
	if diff := cmp.Diff(want, s.History); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestReduceQAFetchFailureReturnsToIdle(t *testing.T) {
	s, _ := Reduce(models.NewSessionState(), AskRequested{LawID: "A"})
	s, _ = Reduce(s, TextLoaded{Epoch: s.Epoch, LawID: "A", Err: errUpstream})
	assert.Equal(t, models.PhaseIdle, s.Phase)
	assert.Equal(t, models.PanelNone, s.ActivePanel)
	assert.Contains(t, s.Notice, "connection reset")

	s, _ = Reduce(s, AskRequested{LawID: "B"})
	assert.Empty(t, s.Notice)
	s, _ = Reduce(s, TextLoaded{Epoch: s.Epoch, LawID: "B"})
	assert.Equal(t, models.PhaseIdle, s.Phase)
	assert.Equal(t, "No statute text found for Q&A (B).", s.Notice)
}

func TestReduceDiscardsStaleResults(t *testing.T) {
	s, _ := Reduce(models.NewSessionState(), SummarizeRequested{LawID: "A"})
	stale := s.Epoch

	s, _ = Reduce(s, AskRequested{LawID: "B"})
	require.Greater(t, s.Epoch, stale)

	next, cmds := Reduce(s, TextLoaded{Epoch: stale, LawID: "A", Text: &models.StatuteText{Text: "A text"}})
	assert.Empty(t, cmds)
	assert.Equal(t, s, next)

	next, _ = Reduce(s, SummaryReady{Epoch: stale, LawID: "A", Summary: "late"})
	assert.Equal(t, s, next)
}

func TestReduceCloseDiscardsQA(t *testing.T) {
	s, _ := Reduce(models.NewSessionState(), AskRequested{LawID: "A"})
	s, _ = Reduce(s, TextLoaded{Epoch: s.Epoch, LawID: "A", Text: &models.StatuteText{Text: "本文"}})
	s, _ = Reduce(s, QuestionSubmitted{Question: "q"})
	pending := s.Epoch

	s, _ = Reduce(s, PanelClosed{})
	assert.Equal(t, models.PhaseIdle, s.Phase)
	assert.Empty(t, s.QATarget)
	assert.Nil(t, s.QAContext)
	assert.Empty(t, s.History)

	next, _ := Reduce(s, AnswerReady{Epoch: pending, LawID: "A", Answer: "late"})
	assert.Empty(t, next.History)
}

func TestReduceIgnoresDuplicateRequests(t *testing.T) {
	s, _ := Reduce(models.NewSessionState(), SummarizeRequested{LawID: "A"})
	next, cmds := Reduce(s, SummarizeRequested{LawID: "A"})
	assert.Empty(t, cmds)
	assert.Equal(t, s, next)

	next, cmds = Reduce(s, SummarizeRequested{LawID: "B"})
	assert.Len(t, cmds, 1)
	assert.Equal(t, "B", next.SummaryTarget)
}

func TestReduceRejectsQuestionsOutsideQA(t *testing.T) {
	s := models.NewSessionState()
	next, cmds := Reduce(s, QuestionSubmitted{Question: "q"})
	assert.Empty(t, cmds)
	assert.Equal(t, s, next)
}

func TestReduceSearchResets(t *testing.T) {
	s, _ := Reduce(models.NewSessionState(), SummarizeRequested{LawID: "A"})
	s, _ = Reduce(s, SearchStarted{})
	assert.Equal(t, models.PhaseIdle, s.Phase)
	assert.Empty(t, s.SummaryTarget)
	assert.False(t, s.Loading)
	assert.Equal(t, uint64(2), s.Epoch)
}

func TestReduceDoesNotShareHistory(t *testing.T) {
	s, _ := Reduce(models.NewSessionState(), AskRequested{LawID: "A"})
	s, _ = Reduce(s, TextLoaded{Epoch: s.Epoch, LawID: "A", Text: &models.StatuteText{Text: "本文"}})
	before, _ := Reduce(s, QuestionSubmitted{Question: "q1"})
	after, _ := Reduce(before, AnswerReady{Epoch: before.Epoch, LawID: "A", Answer: "a1"})

	after.History[0].Content = "changed"
	assert.Equal(t, "q1", before.History[0].Content)
}
