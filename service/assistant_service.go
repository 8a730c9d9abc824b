package service

import (
	"context"
	"fmt"

	"egovlaw-backend/llm"
	"egovlaw-backend/models"
	"egovlaw-backend/pkg/logger"

	"go.uber.org/zap"
)

// Fixed user-facing outcomes of the assistant
const (
	MsgAIDisabled              = "AI features are disabled."
	MsgNoSummaryText           = "no text to summarize"
	MsgNoChatContext           = "no statute text available for chat"
	MsgSummaryFailed           = "An unexpected error occurred while generating the summary."
	MsgChatFailed              = "An unexpected error occurred while generating the answer."
	MsgAnswerBlockedSafety     = "The answer was blocked by safety filters."
	MsgAnswerBlockedRecitation = "The answer was blocked by recitation limits."
)

const summaryPromptTemplate = `Summarize the following Japanese statute concisely in about 200 to 300 characters, in Japanese.

--- Statute text ---
%s
--- End of statute text ---

--- Summary ---`

const chatInstructionTemplate = `You are a legal assistant for Japanese statutes. Answer the user's questions using ONLY the statute text provided below. If the answer cannot be found in the text, say clearly that it cannot be answered from the provided text. Do not use outside knowledge or speculation. Keep answers concise and reply in the language of the question.

IMPORTANT: After every answer you MUST end with the article(s) that mainly support it, in exactly one of these forms:
[Source: Article N]
[Source: Article N, Article M]
Write each article exactly as its title appears in the text (for example 第一条 or 第三条の二). If no article applies, end with [Source: none].

--- Statute text ---
%s
--- End of statute text ---`

const chatAcknowledgement = "Understood. I will answer only from the provided statute text and cite the source articles."

// AssistantService generates statute summaries and Q&A answers.
// Every call returns display text; failures become diagnostic messages.
type AssistantService struct {
	generator llm.Generator
}

// AssistantServiceOption is a functional option for AssistantService
type AssistantServiceOption func(*AssistantService)

// AssistantWithGenerator sets the LLM generator; without one AI is disabled
func AssistantWithGenerator(g llm.Generator) AssistantServiceOption {
	return func(s *AssistantService) {
		s.generator = g
	}
}

// NewAssistantService creates a new assistant service
func NewAssistantService(opts ...AssistantServiceOption) *AssistantService {
	s := &AssistantService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether an LLM generator is configured
func (s *AssistantService) Enabled() bool {
	return s.generator != nil
}

// Summarize asks for a short summary of text
func (s *AssistantService) Summarize(ctx context.Context, text string) string {
	if !s.Enabled() {
		return MsgAIDisabled
	}
	if text == "" {
		return MsgNoSummaryText
	}

	log := logger.WithContext(ctx)
	res, err := s.generator.Generate(ctx, llm.UserText(fmt.Sprintf(summaryPromptTemplate, text)))
	if err != nil {
		log.Error("summary generation failed", zap.Error(err))
		return MsgSummaryFailed
	}
	if res.Block != nil {
		log.Warn("summary response empty", zap.String("reason", string(res.Block.Reason)), zap.String("detail", res.Block.Detail()))
		return "Could not generate a summary. " + res.Block.Detail()
	}
	return res.Text
}

// Chat answers question from the statute text in statuteContext, given the
// prior turns of the conversation.
func (s *AssistantService) Chat(ctx context.Context, statuteContext string, history []models.ChatTurn, question string) string {
	if !s.Enabled() {
		return MsgAIDisabled
	}
	if statuteContext == "" {
		return MsgNoChatContext
	}

	log := logger.WithContext(ctx)
	res, err := s.generator.Generate(ctx, BuildChatMessages(statuteContext, history, question))
	if err != nil {
		log.Error("chat generation failed", zap.Error(err))
		return MsgChatFailed
	}
	if res.Block != nil {
		log.Warn("chat response empty", zap.String("reason", string(res.Block.Reason)), zap.String("detail", res.Block.Detail()))
		switch res.Block.Reason {
		case llm.BlockSafety:
			return MsgAnswerBlockedSafety
		case llm.BlockRecitation:
			return MsgAnswerBlockedRecitation
		default:
			return "Could not generate an answer. " + res.Block.Detail()
		}
	}
	return res.Text
}

// BuildChatMessages lays out the instruction, its acknowledgement, the
// history mapped to provider roles and finally the new question.
func BuildChatMessages(statuteContext string, history []models.ChatTurn, question string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+3)
	messages = append(messages,
		llm.Message{Role: llm.RoleUser, Text: fmt.Sprintf(chatInstructionTemplate, statuteContext)},
		llm.Message{Role: llm.RoleModel, Text: chatAcknowledgement},
	)
	for _, turn := range history {
		role := llm.RoleModel
		if turn.Role == models.RoleUser {
			role = llm.RoleUser
		}
		messages = append(messages, llm.Message{Role: role, Text: turn.Content})
	}
	return append(messages, llm.Message{Role: llm.RoleUser, Text: question})
}
