package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// sendFunc issues one generation call with prior history
type sendFunc func(ctx context.Context, history []*genai.Content, prompt genai.Part) (*genai.GenerateContentResponse, error)

// GeminiGenerator implements Generator on the Gemini API
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
	send   sendFunc
}

// NewGeminiGenerator creates a Gemini-backed generator.
// An empty apiKey yields ErrNotConfigured so callers can run with AI disabled.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, ErrNotConfigured
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	g := &GeminiGenerator{
		client: client,
		model:  client.GenerativeModel(model),
	}
	g.send = g.sendChat
	return g, nil
}

// Close releases the underlying client
func (g *GeminiGenerator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Generate sends messages to Gemini. Blocked or empty responses are returned
// as a Result with Block set, not as an error.
func (g *GeminiGenerator) Generate(ctx context.Context, messages []Message) (*Result, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyPrompt
	}

	last := messages[len(messages)-1]
	history := make([]*genai.Content, 0, len(messages)-1)
	for _, m := range messages[:len(messages)-1] {
		history = append(history, &genai.Content{
			Role:  string(m.Role),
			Parts: []genai.Part{genai.Text(m.Text)},
		})
	}

	resp, err := g.send(ctx, history, genai.Text(last.Text))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return &Result{Block: blockFromError(blocked)}, nil
		}
		return nil, fmt.Errorf("gemini generate failed: %w", err)
	}
	return resultFromResponse(resp), nil
}

func (g *GeminiGenerator) sendChat(ctx context.Context, history []*genai.Content, prompt genai.Part) (*genai.GenerateContentResponse, error) {
	if len(history) == 0 {
		return g.model.GenerateContent(ctx, prompt)
	}
	cs := g.model.StartChat()
	cs.History = history
	return cs.SendMessage(ctx, prompt)
}

func resultFromResponse(resp *genai.GenerateContentResponse) *Result {
	if resp == nil {
		return &Result{Block: &Block{Reason: BlockUnknown}}
	}

	var text strings.Builder
	var first *genai.Candidate
	if len(resp.Candidates) > 0 {
		first = resp.Candidates[0]
		if first != nil && first.Content != nil {
			for _, part := range first.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	if text.Len() > 0 {
		return &Result{Text: text.String()}
	}

	block := &Block{Reason: BlockUnknown, PromptFeedback: formatPromptFeedback(resp.PromptFeedback)}
	if first != nil {
		block.Reason = reasonFromFinish(first.FinishReason)
		block.FinishReason = first.FinishReason.String()
		block.SafetyRatings = formatSafetyRatings(first.SafetyRatings)
	}
	return &Result{Block: block}
}

func blockFromError(err *genai.BlockedError) *Block {
	block := &Block{Reason: BlockUnknown, PromptFeedback: formatPromptFeedback(err.PromptFeedback)}
	if err.Candidate != nil {
		block.Reason = reasonFromFinish(err.Candidate.FinishReason)
		block.FinishReason = err.Candidate.FinishReason.String()
		block.SafetyRatings = formatSafetyRatings(err.Candidate.SafetyRatings)
	} else if err.PromptFeedback != nil {
		switch err.PromptFeedback.BlockReason {
		case genai.BlockReasonSafety:
			block.Reason = BlockSafety
		case genai.BlockReasonUnspecified:
		default:
			block.Reason = BlockOther
		}
	}
	return block
}

func reasonFromFinish(reason genai.FinishReason) BlockReason {
	switch reason {
	case genai.FinishReasonSafety:
		return BlockSafety
	case genai.FinishReasonRecitation:
		return BlockRecitation
	case genai.FinishReasonUnspecified:
		return BlockUnknown
	default:
		return BlockOther
	}
}

func formatSafetyRatings(ratings []*genai.SafetyRating) string {
	if len(ratings) == 0 {
		return ""
	}
	parts := make([]string, 0, len(ratings))
	for _, r := range ratings {
		if r == nil {
			continue
		}
		s := fmt.Sprintf("%s=%s", r.Category, r.Probability)
		if r.Blocked {
			s += " (blocked)"
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, "; ")
}

func formatPromptFeedback(fb *genai.PromptFeedback) string {
	if fb == nil {
		return ""
	}
	s := "block_reason=" + fb.BlockReason.String()
	if ratings := formatSafetyRatings(fb.SafetyRatings); ratings != "" {
		s += " [" + ratings + "]"
	}
	return s
}
