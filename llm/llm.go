// Package llm defines the text-generation capability used for statute
// summaries and Q&A, independent of the provider behind it.
package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNotConfigured = errors.New("llm service not configured")
	ErrEmptyPrompt   = errors.New("llm prompt is empty")
)

// Role is the speaker of a message in provider terms
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one role-tagged turn sent to the model
type Message struct {
	Role Role
	Text string
}

// UserText builds a single-message prompt
func UserText(text string) []Message {
	return []Message{{Role: RoleUser, Text: text}}
}

// BlockReason classifies an empty or blocked response
type BlockReason string

const (
	BlockSafety     BlockReason = "safety"
	BlockRecitation BlockReason = "recitation"
	BlockOther      BlockReason = "other"
	BlockUnknown    BlockReason = "unknown"
)

// Block carries whatever the provider exposed about why no text came back
type Block struct {
	Reason         BlockReason
	FinishReason   string
	SafetyRatings  string
	PromptFeedback string
}

// Detail renders the block metadata for diagnostics
func (b Block) Detail() string {
	return fmt.Sprintf("Reason: %s, Safety Ratings: %s, Prompt Feedback: %s",
		orNA(b.FinishReason), orNA(b.SafetyRatings), orNA(b.PromptFeedback))
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Result is a completion. Exactly one of Text and Block is set.
type Result struct {
	Text  string
	Block *Block
}

// Generator produces text from a role-tagged message sequence; the last
// message is the prompt and earlier ones are conversation history.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (*Result, error)
}
