package quizgen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fariyalkhan17/Quizzmaster/internal/config"
	"github.com/fariyalkhan17/Quizzmaster/internal/domain"
	"github.com/fariyalkhan17/Quizzmaster/internal/logger"
	"github.com/fariyalkhan17/Quizzmaster/internal/port"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

// ollamaQuestionGenerator implements port.QuestionGenerator against a local
// Ollama server.
type ollamaQuestionGenerator struct {
	llmClient   *ollama.LLM
	temperature float64
}

// NewOllamaQuestionGenerator builds the generator from the LLM section of the
// config.
func NewOllamaQuestionGenerator(cfg config.LLMConfig) (port.QuestionGenerator, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithModel(cfg.Model),
		ollama.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ollama client: %w", err)
	}
	return &ollamaQuestionGenerator{llmClient: llm, temperature: cfg.Temperature}, nil
}

func (g *ollamaQuestionGenerator) GenerateQuestions(ctx context.Context, subject, chapter, quizTitle string, existing []string, count int) ([]domain.QuestionDraft, error) {
	l := logger.Get()

	prompt := buildPrompt(subject, chapter, quizTitle, existing, count)
	l.Debug("Requesting questions from LLM",
		zap.String("quizTitle", quizTitle),
		zap.Int("count", count))

	response, err := g.llmClient.Call(ctx, prompt, llms.WithTemperature(g.temperature))
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("LLM request timed out: %w", err)
		}
		return nil, fmt.Errorf("LLM call failed: %w", err)
	}

	drafts, err := ParseDraftResponse(response)
	if err != nil {
		l.Error("Failed to parse LLM question response",
			zap.Error(err),
			zap.String("raw_response", response[:min(500, len(response))]))
		return nil, err
	}
	return drafts, nil
}

func buildPrompt(subject, chapter, quizTitle string, existing []string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a quiz author. Write %d multiple-choice questions for the quiz "%s" in the chapter "%s" of the subject "%s".

Respond with ONLY a JSON array in the following format:
[
    {
        "statement": "question text here",
        "options": ["option one", "option two", "option three", "option four"],
        "correct_index": 0
    }
]

Rules:
1. Each question must have between 2 and 6 options with exactly one correct answer
2. correct_index is the zero-based position of the correct option
3. Questions must be factual and answerable from the chapter topic alone
4. Do not repeat or rephrase any of the existing questions listed below
`, count, quizTitle, chapter, subject)

	if len(existing) > 0 {
		b.WriteString("\nExisting questions:\n")
		for _, s := range existing {
			b.WriteString("- ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ParseDraftResponse extracts the JSON array from a raw model response and
// converts it into validated drafts. Reasoning traces and markdown fences
// around the JSON are tolerated.
func ParseDraftResponse(raw string) ([]domain.QuestionDraft, error) {
	cleaned := strings.TrimSpace(raw)

	if thinkStart := strings.Index(cleaned, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(cleaned, "</think>"); thinkEnd != -1 && thinkEnd > thinkStart {
			cleaned = strings.TrimSpace(cleaned[:thinkStart] + cleaned[thinkEnd+len("</think>"):])
		}
	}
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	jsonStart := strings.Index(cleaned, "[")
	jsonEnd := strings.LastIndex(cleaned, "]")
	if jsonStart == -1 || jsonEnd == -1 || jsonEnd <= jsonStart {
		return nil, fmt.Errorf("no JSON array found in LLM response")
	}

	var parsed []struct {
		Statement    string   `json:"statement"`
		Options      []string `json:"options"`
		CorrectIndex int      `json:"correct_index"`
	}
	if err := json.Unmarshal([]byte(cleaned[jsonStart:jsonEnd+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal LLM question array: %w", err)
	}

	drafts := make([]domain.QuestionDraft, 0, len(parsed))
	for _, p := range parsed {
		draft := domain.QuestionDraft{
			Statement:    strings.TrimSpace(p.Statement),
			Options:      p.Options,
			CorrectIndex: p.CorrectIndex,
		}
		if err := draft.Validate(); err != nil {
			logger.Get().Debug("Dropping malformed draft from LLM", zap.Error(err))
			continue
		}
		drafts = append(drafts, draft)
	}
	return drafts, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
