package service

import (
	"context"
	"testing"

	"egovlaw-backend/llm"
	"egovlaw-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssistantDisabled(t *testing.T) {
	a := NewAssistantService()
	assert.False(t, a.Enabled())
	assert.Equal(t, MsgAIDisabled, a.Summarize(context.Background(), "text"))
	assert.Equal(t, MsgAIDisabled, a.Chat(context.Background(), "text", nil, "q"))
}

func TestSummarizeEmptyTextSkipsModel(t *testing.T) {
	gen := &fakeGenerator{}
	a := NewAssistantService(AssistantWithGenerator(gen))

	assert.Equal(t, MsgNoSummaryText, a.Summarize(context.Background(), ""))
	assert.Equal(t, 0, gen.callCount())
}

func TestSummarizePrompt(t *testing.T) {
	gen := &fakeGenerator{result: &llm.Result{Text: "労働条件の最低基準を定める法律。"}}
	a := NewAssistantService(AssistantWithGenerator(gen))

	got := a.Summarize(context.Background(), "第一条 この法律は…")
	assert.Equal(t, "労働条件の最低基準を定める法律。", got)

	require.Equal(t, 1, gen.callCount())
	require.Len(t, gen.calls[0], 1)
	assert.Equal(t, llm.RoleUser, gen.calls[0][0].Role)
	assert.Contains(t, gen.calls[0][0].Text, "第一条 この法律は…")
}

func TestSummarizeBlocked(t *testing.T) {
	gen := &fakeGenerator{result: &llm.Result{Block: &llm.Block{Reason: llm.BlockSafety, FinishReason: "SAFETY"}}}
	a := NewAssistantService(AssistantWithGenerator(gen))

	got := a.Summarize(context.Background(), "text")
	assert.Equal(t, "Could not generate a summary. Reason: SAFETY, Safety Ratings: N/A, Prompt Feedback: N/A", got)
}

func TestSummarizeError(t *testing.T) {
	gen := &fakeGenerator{err: errUpstream}
	a := NewAssistantService(AssistantWithGenerator(gen))
	assert.Equal(t, MsgSummaryFailed, a.Summarize(context.Background(), "text"))
}

func TestChatOutcomes(t *testing.T) {
	tests := []struct {
		name   string
		result *llm.Result
		err    error
		want   string
	}{
		{"answer", &llm.Result{Text: "回答 [Source: 第一条]"}, nil, "回答 [Source: 第一条]"},
		{"safety", &llm.Result{Block: &llm.Block{Reason: llm.BlockSafety}}, nil, MsgAnswerBlockedSafety},
		{"recitation", &llm.Result{Block: &llm.Block{Reason: llm.BlockRecitation}}, nil, MsgAnswerBlockedRecitation},
		{
			"other block",
			&llm.Result{Block: &llm.Block{Reason: llm.BlockOther, FinishReason: "OTHER"}},
			nil,
			"Could not generate an answer. Reason: OTHER, Safety Ratings: N/A, Prompt Feedback: N/A",
		},
		{"transport error", nil, errUpstream, MsgChatFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssistantService(AssistantWithGenerator(&fakeGenerator{result: tt.result, err: tt.err}))
			assert.Equal(t, tt.want, a.Chat(context.Background(), "第一条 本文", nil, "目的は?"))
		})
	}
}

func TestChatWithoutContext(t *testing.T) {
	gen := &fakeGenerator{}
	a := NewAssistantService(AssistantWithGenerator(gen))
	assert.Equal(t, MsgNoChatContext, a.Chat(context.Background(), "", nil, "q"))
	assert.Equal(t, 0, gen.callCount())
}

func TestBuildChatMessages(t *testing.T) {
	history := []models.ChatTurn{
		{Role: models.RoleUser, Content: "第一条は?"},
		{Role: models.RoleAssistant, Content: "目的規定です。[Source: 第一条]"},
	}
	msgs := BuildChatMessages("第一条 本文", history, "第二条は?")

	require.Len(t, msgs, 5)
	assert.Equal(t, llm.RoleUser, msgs[0].Role)
	assert.Contains(t, msgs[0].Text, "第一条 本文")
	assert.Contains(t, msgs[0].Text, "[Source: none]")
	assert.Equal(t, llm.Message{Role: llm.RoleModel, Text: chatAcknowledgement}, msgs[1])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Text: "第一条は?"}, msgs[2])
	assert.Equal(t, llm.Message{Role: llm.RoleModel, Text: "目的規定です。[Source: 第一条]"}, msgs[3])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Text: "第二条は?"}, msgs[4])
}
