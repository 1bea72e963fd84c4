package classifier

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/config"
)

// New builds the configured classifier wrapped in the timeout guard.
func New(cfg config.ClassifierConfig, logger *zap.Logger) (Classifier, error) {
	var base Classifier
	switch cfg.Provider {
	case config.ProviderKeyword, "":
		base = NewKeyword()
	case config.ProviderHuggingFace:
		base = NewHuggingFace(HuggingFaceConfig{
			BaseURL:           cfg.HuggingFaceBaseURL,
			Token:             cfg.HuggingFaceToken,
			CategoryModel:     cfg.CategoryModel,
			SentimentModel:    cfg.SentimentModel,
			MinCategoryScore:  cfg.MinCategoryScore,
			MinSentimentScore: cfg.MinSentimentScore,
		}, nil, logger)
	case config.ProviderAnthropic:
		base = NewAnthropic(cfg.AnthropicAPIKey, cfg.AnthropicModel, logger)
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}
	logger.Info("classifier configured", zap.String("provider", cfg.Provider), zap.Duration("timeout", cfg.Timeout()))
	return WithTimeout(base, cfg.Timeout()), nil
}
