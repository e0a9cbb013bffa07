// Package pathgen turns a LearningPathInput into an unnormalized generated
// path through a single model call.
package pathgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/abhisek/skillroute/internal/llm"
	"github.com/abhisek/skillroute/internal/paths"
	"github.com/abhisek/skillroute/internal/response"
)

// Purpose labels path generation calls in the LLM event log.
const Purpose = "path-gen"

const (
	configMissingMessage = "AI API key is not configured. Please ensure the API_KEY environment variable is set."
	malformedMessage     = "AI response was not in the expected format (e.g., missing phases or path title)."
)

// Service generates learning paths. A nil provider means no credential is
// configured.
type Service struct {
	provider llm.Provider
	cfg      Config
	log      *zap.Logger
}

// NewService creates a path generation service.
func NewService(provider llm.Provider, cfg Config, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{provider: provider, cfg: cfg, log: log}
}

// Generate asks the model for a path and returns it unnormalized. Every
// failure is an *Error.
func (s *Service) Generate(ctx context.Context, input paths.Input) (*paths.GeneratedPath, error) {
	if s.provider == nil {
		s.log.Error("path generation requested without a configured provider")
		return nil, &Error{Kind: ConfigMissing, Message: configMissingMessage, Title: TitleConfigMissing}
	}

	ctx = llm.WithPurpose(ctx, Purpose)
	req := llm.Request{
		Messages:    llm.UserPrompt(buildPrompt(input.Clean())),
		Format:      llm.FormatJSON,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		TopP:        s.cfg.TopP,
		TopK:        s.cfg.TopK,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		s.log.Error("path generation call failed", zap.Error(err))
		return nil, &Error{
			Kind:    ModelInvocationFailure,
			Message: "AI API Error: " + describeModelError(err),
			Title:   TitleServiceFailed,
			Err:     err,
		}
	}

	return s.interpret(resp.Text())
}

func (s *Service) interpret(raw string) (*paths.GeneratedPath, error) {
	parsed, err := response.Parse(raw)
	if err != nil {
		var pe *response.ParseError
		if errors.As(err, &pe) {
			s.log.Warn("model output is not JSON", zap.String("preview", response.Preview(raw)))
			return nil, &Error{Kind: ParseFailure, Message: pe.Message, Title: pe.Title, Err: err}
		}
		return nil, &Error{Kind: ParseFailure, Message: err.Error(), Title: response.ParseErrorTitle, Err: err}
	}

	if refusal, title, ok := refusalOf(parsed); ok {
		s.log.Warn("model declined to generate a path", zap.String("error", refusal))
		if title == "" {
			title = TitleInsufficient
		}
		return nil, &Error{Kind: InsufficientInput, Message: refusal, Title: title}
	}

	if err := llm.ValidateValue(PathSchema, parsed); err != nil {
		s.log.Warn("model output has the wrong shape", zap.Error(err))
		return nil, s.malformed(err)
	}

	// Re-encode the validated value into the typed shape.
	data, err := json.Marshal(parsed)
	if err != nil {
		return nil, s.malformed(err)
	}
	var gen paths.GeneratedPath
	if err := json.Unmarshal(data, &gen); err != nil {
		return nil, s.malformed(err)
	}
	if gen.Phases == nil {
		gen.Phases = []paths.GeneratedPhase{}
	}
	return &gen, nil
}

func (s *Service) malformed(err error) *Error {
	return &Error{Kind: SchemaInvalid, Message: malformedMessage, Title: TitleMalformed, Err: err}
}

// refusalOf reports a non-empty "error" field paired with empty or absent
// phases.
func refusalOf(v any) (msg, title string, ok bool) {
	obj, isObj := v.(map[string]any)
	if !isObj {
		return "", "", false
	}
	msg, _ = obj["error"].(string)
	if strings.TrimSpace(msg) == "" {
		return "", "", false
	}
	switch phases := obj["phases"].(type) {
	case nil:
	case []any:
		if len(phases) > 0 {
			return "", "", false
		}
	default:
		return "", "", false
	}
	title, _ = obj["pathTitle"].(string)
	return msg, title, true
}

func describeModelError(err error) string {
	msg := err.Error()
	if llm.IsAuthError(err) {
		return fmt.Sprintf("API key is invalid, missing, or lacks permissions: %s. Please verify the API_KEY environment variable and API console settings.", msg)
	}
	return msg
}
