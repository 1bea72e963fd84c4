package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ErrModelLoading is returned while the hosted model is cold-starting.
var ErrModelLoading = errors.New("model is loading")

// A model response younger than readyTTL answers Ready without a round
// trip. Older ones are refreshed with a single classification bounded by
// readyTimeout.
const (
	readyTTL      = 10 * time.Second
	readyTimeout  = 5 * time.Second
	readinessText = "readiness check for the complaint classifier"
)

type observation struct {
	at  time.Time
	err error
}

// HuggingFaceConfig configures the hosted inference classifier.
type HuggingFaceConfig struct {
	BaseURL           string
	Token             string
	CategoryModel     string
	SentimentModel    string
	MinCategoryScore  float64
	MinSentimentScore float64
}

// HuggingFace classifies through the Hugging Face Inference API: zero-shot
// classification for the category and a sentiment model for the tone. When
// a model answers with a score under its minimum, the keyword verdict for
// that axis is used instead.
type HuggingFace struct {
	cfg      HuggingFaceConfig
	client   *http.Client
	fallback *Keyword
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	observed map[string]observation
}

// NewHuggingFace builds the classifier. A nil client uses http.DefaultClient.
func NewHuggingFace(cfg HuggingFaceConfig, client *http.Client, logger *zap.Logger) *HuggingFace {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &HuggingFace{
		cfg:      cfg,
		client:   client,
		fallback: NewKeyword(),
		logger:   logger,
		now:      time.Now,
		observed: make(map[string]observation, 2),
	}
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

type textRequest struct {
	Inputs string `json:"inputs"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classify queries both models concurrently.
func (h *HuggingFace) Classify(ctx context.Context, text string) (Result, error) {
	var (
		wg           sync.WaitGroup
		category     domain.ComplaintCategory
		categoryConf float64
		categoryErr  error
		sentiment    domain.Sentiment
		sentConf     float64
		sentErr      error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		category, categoryConf, categoryErr = h.classifyCategory(ctx, text)
	}()
	go func() {
		defer wg.Done()
		sentiment, sentConf, sentErr = h.classifySentiment(ctx, text)
	}()
	wg.Wait()

	if err := errors.Join(categoryErr, sentErr); err != nil {
		return Result{}, unavailable(err)
	}
	return Result{
		Category:   category,
		Sentiment:  sentiment,
		Confidence: domain.Confidence{Category: categoryConf, Sentiment: sentConf},
	}, nil
}

// Ready reports whether both models answer. Recent responses from intake
// traffic are reused; otherwise a classification is sent to find out.
func (h *HuggingFace) Ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ok, err := h.recent(); ok {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()
	_, err := h.Classify(ctx, readinessText)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrModelLoading):
		return ErrModelLoading
	default:
		return err
	}
}

// recent folds the per-model observations. It reports false when either
// model has no observation within readyTTL.
func (h *HuggingFace) recent() (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	var failure error
	for _, model := range []string{h.cfg.CategoryModel, h.cfg.SentimentModel} {
		o, seen := h.observed[model]
		if !seen || now.Sub(o.at) > readyTTL {
			return false, nil
		}
		if errors.Is(o.err, ErrModelLoading) {
			return true, ErrModelLoading
		}
		if failure == nil {
			failure = o.err
		}
	}
	return true, failure
}

func (h *HuggingFace) observe(model string, err error) {
	h.mu.Lock()
	h.observed[model] = observation{at: h.now(), err: err}
	h.mu.Unlock()
}

func (h *HuggingFace) classifyCategory(ctx context.Context, text string) (domain.ComplaintCategory, float64, error) {
	labels := make([]string, 0, len(domain.Categories))
	for _, c := range domain.Categories {
		labels = append(labels, string(c))
	}
	payload := zeroShotRequest{
		Inputs:     text,
		Parameters: zeroShotParameters{CandidateLabels: labels, MultiLabel: false},
	}
	var resp zeroShotResponse
	if err := h.post(ctx, h.cfg.CategoryModel, payload, &resp); err != nil {
		return "", 0, err
	}
	if len(resp.Labels) == 0 || len(resp.Scores) == 0 {
		return "", 0, fmt.Errorf("%s: empty zero-shot response", h.cfg.CategoryModel)
	}

	label := domain.ComplaintCategory(resp.Labels[0])
	score := resp.Scores[0]
	if !label.Valid() || score <= h.cfg.MinCategoryScore {
		fallback, conf := h.fallback.CategoryOf(text)
		h.logger.Debug("category model below threshold; using keywords",
			zap.String("model_label", resp.Labels[0]),
			zap.Float64("model_score", score),
			zap.String("keyword_label", string(fallback)))
		return fallback, conf, nil
	}
	return label, roundScore(score), nil
}

func (h *HuggingFace) classifySentiment(ctx context.Context, text string) (domain.Sentiment, float64, error) {
	var resp [][]labelScore
	if err := h.post(ctx, h.cfg.SentimentModel, textRequest{Inputs: text}, &resp); err != nil {
		return "", 0, err
	}
	if len(resp) == 0 || len(resp[0]) == 0 {
		return "", 0, fmt.Errorf("%s: empty sentiment response", h.cfg.SentimentModel)
	}

	top := resp[0][0]
	for _, candidate := range resp[0][1:] {
		if candidate.Score > top.Score {
			top = candidate
		}
	}
	label := domain.Sentiment(strings.ToLower(top.Label))
	if !label.Valid() || top.Score <= h.cfg.MinSentimentScore {
		fallback, conf := h.fallback.SentimentOf(text)
		h.logger.Debug("sentiment model below threshold; using keywords",
			zap.String("model_label", top.Label),
			zap.Float64("model_score", top.Score),
			zap.String("keyword_label", string(fallback)))
		return fallback, conf, nil
	}
	return label, roundScore(top.Score), nil
}

func (h *HuggingFace) post(ctx context.Context, model string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.cfg.BaseURL+"/"+model, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.cfg.Token)

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", model, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: reading response: %w", model, err)
	}

	switch {
	case resp.StatusCode == http.StatusServiceUnavailable:
		err := fmt.Errorf("%s: %w", model, ErrModelLoading)
		h.observe(model, err)
		return err
	case resp.StatusCode != http.StatusOK:
		err := fmt.Errorf("%s: unexpected status %d: %s", model, resp.StatusCode, truncate(string(respBody), 200))
		h.observe(model, err)
		return err
	}
	h.observe(model, nil)

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("%s: parsing response: %w", model, err)
	}
	return nil
}

func roundScore(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
