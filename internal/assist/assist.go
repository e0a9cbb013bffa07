// Package assist answers free-text learner questions. It never returns an
// error; failures become apology strings.
package assist

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/skillroute/internal/llm"
)

// Purpose labels assistant calls in the LLM event log.
const Purpose = "assist"

// User-facing replies for the failure paths.
const (
	MsgEmptyQuery    = "Please enter or say your question."
	MsgNotConfigured = "AI Assistant is unavailable. API Key is not configured."
	MsgConfigIssue   = "AI Assistant is temporarily unavailable due to an API configuration issue."
	MsgGeneric       = "Sorry, I encountered an issue while processing your request."
)

// Config holds assistant sampling settings.
type Config struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
	TopK        int
}

// DefaultConfig returns the settings used for free-form answers.
func DefaultConfig() Config {
	return Config{
		Temperature: 0.7,
		TopP:        0.9,
		TopK:        40,
	}
}

// Service is the learning assistant. A nil provider means no credential.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      *zap.Logger
}

// NewService creates an assistant.
func NewService(provider llm.Provider, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{provider: provider, cfg: cfg, log: log}
}

// Ask answers query, tailoring the answer to pathTitle when one is given.
func (s *Service) Ask(ctx context.Context, query, pathTitle string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return MsgEmptyQuery
	}
	if s.provider == nil {
		s.log.Error("assistant query without a configured provider")
		return MsgNotConfigured
	}

	ctx = llm.WithPurpose(ctx, Purpose)
	resp, err := s.provider.Generate(ctx, llm.Request{
		Messages:    llm.UserPrompt(buildPrompt(query, strings.TrimSpace(pathTitle))),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		TopP:        s.cfg.TopP,
		TopK:        s.cfg.TopK,
	})
	if err != nil {
		s.log.Error("assistant call failed", zap.Error(err))
		if llm.IsAuthError(err) {
			return MsgConfigIssue
		}
		return MsgGeneric
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		s.log.Warn("assistant returned an empty answer")
		return MsgGeneric
	}
	return answer
}

func buildPrompt(query, pathTitle string) string {
	var b strings.Builder

	b.WriteString("You are a friendly and encouraging AI Learning Assistant.\n")
	if pathTitle != "" {
		b.WriteString(fmt.Sprintf("The user is currently focused on a learning path titled %q. ", pathTitle))
		b.WriteString("Please tailor your assistance to this context if the query seems related. If the query is general, answer it generally.\n")
	}

	b.WriteString(fmt.Sprintf("\nUser's query: %q\n", query))
	b.WriteString(`
Your task:
1. Understand the user's query.
2. Provide a concise, helpful, and clear response.
3. If the query is about a concept, explain it simply.
4. If the query asks for resources, suggest 1-2 specific and relevant examples or types of resources.
5. If the query is vague, gently ask for clarification.
6. Maintain a supportive and positive tone.
7. Do not refer to yourself as a large language model or AI. Act as a personal tutor.
8. Keep your response focused. Avoid overly long answers. Aim for 1-3 paragraphs.
Format your response as plain text.
`)
	return b.String()
}
