package analyze

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/furiview/furiview/internal/logging"
)

// Analysis is the translation and grammar notes for one extracted text.
type Analysis struct {
	Translation     string   `json:"translation"`
	GrammarPatterns []string `json:"grammar_patterns"`
}

// UnavailableTranslation is the sentinel returned whenever analysis could
// not be performed. Callers treat it as a degraded result, not a failure.
const UnavailableTranslation = "Analysis unavailable"

// Unavailable is the degraded analysis result.
func Unavailable() Analysis {
	return Analysis{Translation: UnavailableTranslation, GrammarPatterns: []string{}}
}

const systemPrompt = "You are a Japanese language teaching assistant. " +
	"Given Japanese text, respond with exactly two sections:\n" +
	"TRANSLATION: a natural English translation.\n" +
	"GRAMMAR_PATTERNS: a dash-prefixed list of grammar patterns present in the text, " +
	"each with a one-line explanation. Keep the list short."

// Analyzer produces translations and grammar notes via an OpenAI-compatible
// chat completion endpoint.
type Analyzer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *logging.Logger
}

// AnalyzerConfig holds the chat completion endpoint settings.
type AnalyzerConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// NewAnalyzer creates an analyzer against cfg.BaseURL (Groq's endpoint is
// OpenAI-compatible, so the stock client works against it).
func NewAnalyzer(cfg *AnalyzerConfig, logger *logging.Logger) *Analyzer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Analyzer{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: timeout,
		logger:  logger,
	}
}

// Analyze translates text and extracts grammar patterns. It never returns
// an error: any failure, including timeout, degrades to Unavailable().
func (a *Analyzer) Analyze(ctx context.Context, text string) Analysis {
	if strings.TrimSpace(text) == "" {
		a.logger.Debug("Skipping analysis of empty text")
		return Unavailable()
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	op := func() (string, error) {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       a.model,
			Temperature: 0.3,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Analyze this Japanese text:\n\n%s", text)},
			},
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("completion returned no choices")
		}
		return resp.Choices[0].Message.Content, nil
	}

	content, err := backoff.RetryWithData(op, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(2*time.Second), 2), ctx))
	if err != nil {
		a.logger.Warn("Analysis request failed, degrading", "error", err)
		return Unavailable()
	}

	result := ParseAnalysis(content)
	a.logger.Info("Analysis complete",
		"translation_chars", len(result.Translation),
		"patterns", len(result.GrammarPatterns))
	return result
}
