package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
)

const anthropicMaxTokens = 256

// Anthropic asks a Claude model for a JSON verdict.
type Anthropic struct {
	client anthropic.Client
	model  string
	logger *zap.Logger
}

// NewAnthropic builds the classifier. Extra options are passed to the SDK client.
func NewAnthropic(apiKey, model string, logger *zap.Logger, opts ...option.RequestOption) *Anthropic {
	if logger == nil {
		logger = zap.NewNop()
	}
	// SDK retries off; the timeout wrapper owns the deadline.
	clientOpts := append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	return &Anthropic{
		client: anthropic.NewClient(clientOpts...),
		model:  model,
		logger: logger,
	}
}

type anthropicVerdict struct {
	Category            string  `json:"category"`
	Sentiment           string  `json:"sentiment"`
	CategoryConfidence  float64 `json:"category_confidence"`
	SentimentConfidence float64 `json:"sentiment_confidence"`
}

// Classify sends one Messages request and parses the JSON verdict.
func (a *Anthropic) Classify(ctx context.Context, text string) (Result, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: anthropicSystemPrompt(), CacheControl: anthropic.NewCacheControlEphemeralParam()},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		a.logger.Warn("anthropic classify failed", zap.String("model", a.model), zap.Error(err))
		return Result{}, unavailable(fmt.Errorf("anthropic API error: %w", err))
	}

	for _, block := range message.Content {
		if block.Type != "text" {
			continue
		}
		result, err := parseAnthropicVerdict(block.Text)
		if err != nil {
			return Result{}, unavailable(err)
		}
		a.logger.Debug("anthropic classify",
			zap.String("model", a.model),
			zap.Int64("tokens_in", message.Usage.InputTokens),
			zap.Int64("tokens_out", message.Usage.OutputTokens))
		return result, nil
	}
	return Result{}, unavailable(fmt.Errorf("no text content in anthropic response"))
}

func anthropicSystemPrompt() string {
	categories := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		categories = append(categories, string(c))
	}
	return "You classify customer complaints. Reply with a single JSON object and nothing else, with keys " +
		`"category", "sentiment", "category_confidence", "sentiment_confidence". ` +
		"category must be exactly one of: " + strings.Join(categories, ", ") + ". " +
		"sentiment must be one of: positive, neutral, negative. " +
		"Confidences are your probability for the chosen label, between 0 and 1."
}

func parseAnthropicVerdict(text string) (Result, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Result{}, fmt.Errorf("no JSON object in model reply")
	}
	var verdict anthropicVerdict
	if err := json.Unmarshal([]byte(text[start:end+1]), &verdict); err != nil {
		return Result{}, fmt.Errorf("parsing model reply: %w", err)
	}
	result := Result{
		Category:  domain.ComplaintCategory(strings.TrimSpace(verdict.Category)),
		Sentiment: domain.Sentiment(strings.ToLower(strings.TrimSpace(verdict.Sentiment))),
		Confidence: domain.Confidence{
			Category:  verdict.CategoryConfidence,
			Sentiment: verdict.SentimentConfidence,
		},
	}
	if err := result.Validate(); err != nil {
		return Result{}, err
	}
	return result, nil
}
