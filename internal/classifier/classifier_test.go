package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
)

func TestKeyword_Classify(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		wantCategory  domain.ComplaintCategory
		wantSentiment domain.Sentiment
	}{
		{"broken product", "The product arrived broken and the quality is terrible", domain.CategoryProductQuality, domain.SentimentNegative},
		{"billing charge", "I was charged twice on my credit card for one invoice", domain.CategoryBilling, domain.SentimentNeutral},
		{"login trouble", "Cannot sign in, my account is locked after a password reset", domain.CategoryAccount, domain.SentimentNeutral},
		{"feature suggestion", "Maybe you could consider adding a dark mode feature to the app", domain.CategoryTechnicalSupport, domain.SentimentNeutral},
		{"praise", "Thanks, the courier was great and I am happy", domain.CategoryDelivery, domain.SentimentPositive},
		{"no keywords", "Something is off about all of this honestly", domain.CategoryServiceQuality, domain.SentimentNeutral},
	}

	k := NewKeyword()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := k.Classify(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCategory, res.Category)
			assert.Equal(t, tt.wantSentiment, res.Sentiment)
			assert.NoError(t, res.Validate())
		})
	}
}

func TestKeyword_Confidence(t *testing.T) {
	k := NewKeyword()

	_, conf := k.CategoryOf("nothing to match here at all")
	assert.Equal(t, 0.70, conf)

	// bill, billing, charge, charged, invoice, payment: six hits.
	_, conf = k.CategoryOf("billing charged a payment invoice")
	assert.InDelta(t, 0.97, conf, 1e-9)

	_, conf = k.CategoryOf("bill billing charge charged payment invoice paid overcharged fee cost price")
	assert.Equal(t, 0.99, conf)
}

func TestWithTimeout(t *testing.T) {
	valid := Result{
		Category:   domain.CategoryBilling,
		Sentiment:  domain.SentimentNegative,
		Confidence: domain.Confidence{Category: 0.9, Sentiment: 0.8},
	}

	t.Run("passes valid verdicts through", func(t *testing.T) {
		c := WithTimeout(Func(func(context.Context, string) (Result, error) { return valid, nil }), time.Second)
		res, err := c.Classify(context.Background(), "text")
		require.NoError(t, err)
		assert.Equal(t, valid, res)
	})

	t.Run("slow model becomes unavailable timeout", func(t *testing.T) {
		release := make(chan struct{})
		defer close(release)
		slow := Func(func(context.Context, string) (Result, error) {
			<-release
			return valid, nil
		})
		c := WithTimeout(slow, 20*time.Millisecond)

		start := time.Now()
		_, err := c.Classify(context.Background(), "text")
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("model error becomes unavailable", func(t *testing.T) {
		boom := errors.New("connection refused")
		c := WithTimeout(Func(func(context.Context, string) (Result, error) { return Result{}, boom }), time.Second)
		_, err := c.Classify(context.Background(), "text")
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("invalid verdict is rejected", func(t *testing.T) {
		bad := valid
		bad.Confidence.Category = 1.5
		c := WithTimeout(Func(func(context.Context, string) (Result, error) { return bad, nil }), time.Second)
		_, err := c.Classify(context.Background(), "text")
		assert.ErrorIs(t, err, ErrUnavailable)

		bad = valid
		bad.Category = "Shipping"
		c = WithTimeout(Func(func(context.Context, string) (Result, error) { return bad, nil }), time.Second)
		_, err = c.Classify(context.Background(), "text")
		assert.ErrorIs(t, err, ErrUnavailable)
	})

	t.Run("readiness is delegated", func(t *testing.T) {
		hf := NewHuggingFace(HuggingFaceConfig{}, nil, nil)
		hf.observe("", ErrModelLoading)
		assert.ErrorIs(t, Ready(context.Background(), WithTimeout(hf, time.Second)), ErrModelLoading)
		assert.NoError(t, Ready(context.Background(), WithTimeout(NewKeyword(), time.Second)))
	})
}

func newHuggingFaceServer(t *testing.T, categoryScore, sentimentScore float64, status *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(huggingFaceHandler(t, categoryScore, sentimentScore, status))
}

func huggingFaceHandler(t *testing.T, categoryScore, sentimentScore float64, status *atomic.Int32) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if code := int(status.Load()); code != http.StatusOK {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"error":"Model is currently loading"}`))
			return
		}
		assert.Equal(t, "Bearer hf-token", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/zero-shot"):
			var req zeroShotRequest
			assert.NoError(t, json.Unmarshal(body, &req))
			assert.Len(t, req.Parameters.CandidateLabels, len(domain.Categories))
			_ = json.NewEncoder(w).Encode(zeroShotResponse{
				Labels: []string{"Delivery Issues", "Billing Issues"},
				Scores: []float64{categoryScore, 1 - categoryScore},
			})
		case strings.HasSuffix(r.URL.Path, "/sentiment"):
			_ = json.NewEncoder(w).Encode([][]labelScore{{
				{Label: "neutral", Score: (1 - sentimentScore) / 2},
				{Label: "negative", Score: sentimentScore},
				{Label: "positive", Score: (1 - sentimentScore) / 2},
			}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestHuggingFace_Classify(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)

	cfg := func(url string) HuggingFaceConfig {
		return HuggingFaceConfig{
			BaseURL:           url,
			Token:             "hf-token",
			CategoryModel:     "zero-shot",
			SentimentModel:    "sentiment",
			MinCategoryScore:  0.5,
			MinSentimentScore: 0.6,
		}
	}

	t.Run("confident models are used verbatim", func(t *testing.T) {
		srv := newHuggingFaceServer(t, 0.8123, 0.91, &status)
		defer srv.Close()

		res, err := NewHuggingFace(cfg(srv.URL), srv.Client(), nil).Classify(context.Background(), "my parcel is late and I am angry")
		require.NoError(t, err)
		assert.Equal(t, domain.CategoryDelivery, res.Category)
		assert.Equal(t, domain.SentimentNegative, res.Sentiment)
		assert.Equal(t, 0.812, res.Confidence.Category)
		assert.Equal(t, 0.91, res.Confidence.Sentiment)
	})

	t.Run("low scores fall back to keywords per axis", func(t *testing.T) {
		srv := newHuggingFaceServer(t, 0.4, 0.5, &status)
		defer srv.Close()

		res, err := NewHuggingFace(cfg(srv.URL), srv.Client(), nil).Classify(context.Background(), "I was overcharged on my invoice, thanks anyway")
		require.NoError(t, err)
		assert.Equal(t, domain.CategoryBilling, res.Category)
		assert.Equal(t, domain.SentimentPositive, res.Sentiment)
		assert.Equal(t, 0.80, res.Confidence.Sentiment)
	})

	t.Run("cold model is unavailable and not ready", func(t *testing.T) {
		status.Store(http.StatusServiceUnavailable)
		defer status.Store(http.StatusOK)
		srv := newHuggingFaceServer(t, 0.9, 0.9, &status)
		defer srv.Close()

		hf := NewHuggingFace(cfg(srv.URL), srv.Client(), nil)
		_, err := hf.Classify(context.Background(), "anything long enough here")
		assert.ErrorIs(t, err, ErrUnavailable)
		assert.ErrorIs(t, err, ErrModelLoading)
		assert.ErrorIs(t, hf.Ready(context.Background()), ErrModelLoading)

		status.Store(http.StatusOK)
		_, err = hf.Classify(context.Background(), "anything long enough here")
		require.NoError(t, err)
		assert.NoError(t, hf.Ready(context.Background()))
	})

	t.Run("unreachable host is unavailable", func(t *testing.T) {
		srv := newHuggingFaceServer(t, 0.9, 0.9, &status)
		srv.Close()

		_, err := NewHuggingFace(cfg(srv.URL), nil, nil).Classify(context.Background(), "anything long enough here")
		assert.ErrorIs(t, err, ErrUnavailable)
	})
}

func TestHuggingFace_Ready(t *testing.T) {
	var status, hits atomic.Int32
	status.Store(http.StatusServiceUnavailable)
	inner := huggingFaceHandler(t, 0.9, 0.9, &status)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		inner.ServeHTTP(w, r)
	}))
	defer srv.Close()

	clock := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	hf := NewHuggingFace(HuggingFaceConfig{
		BaseURL:        srv.URL,
		Token:          "hf-token",
		CategoryModel:  "zero-shot",
		SentimentModel: "sentiment",
	}, srv.Client(), nil)
	hf.now = func() time.Time { return clock }
	ctx := context.Background()

	// Nothing observed yet: readiness asks the models itself.
	assert.ErrorIs(t, hf.Ready(ctx), ErrModelLoading)
	assert.Equal(t, int32(2), hits.Load())

	// A fresh answer is reused.
	status.Store(http.StatusOK)
	assert.ErrorIs(t, hf.Ready(ctx), ErrModelLoading)
	assert.Equal(t, int32(2), hits.Load())

	// Once stale, the warm model is seen without any intake traffic.
	clock = clock.Add(readyTTL + time.Second)
	assert.NoError(t, hf.Ready(ctx))
	assert.Equal(t, int32(4), hits.Load())
	assert.NoError(t, hf.Ready(ctx))
	assert.Equal(t, int32(4), hits.Load())

	// A non-503 failure replaces an earlier cold start.
	status.Store(http.StatusServiceUnavailable)
	_, err := hf.Classify(ctx, "anything long enough here")
	require.ErrorIs(t, err, ErrModelLoading)
	assert.ErrorIs(t, hf.Ready(ctx), ErrModelLoading)

	status.Store(http.StatusInternalServerError)
	_, err = hf.Classify(ctx, "anything long enough here")
	require.Error(t, err)
	err = hf.Ready(ctx)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrModelLoading)
	assert.Contains(t, err.Error(), "unexpected status 500")

	status.Store(http.StatusOK)
	clock = clock.Add(readyTTL + time.Second)
	assert.NoError(t, hf.Ready(ctx))
}

func TestHuggingFace_ReadyHonoursContext(t *testing.T) {
	hf := NewHuggingFace(HuggingFaceConfig{BaseURL: "http://127.0.0.1:1"}, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, hf.Ready(ctx), context.Canceled)
}

func TestParseAnthropicVerdict(t *testing.T) {
	res, err := parseAnthropicVerdict("```json\n{\"category\": \"Refund Requests\", \"sentiment\": \"Negative\", \"category_confidence\": 0.93, \"sentiment_confidence\": 0.88}\n```")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryRefund, res.Category)
	assert.Equal(t, domain.SentimentNegative, res.Sentiment)
	assert.Equal(t, 0.93, res.Confidence.Category)

	_, err = parseAnthropicVerdict("I think it is about billing")
	assert.Error(t, err)

	_, err = parseAnthropicVerdict(`{"category": "Shipping", "sentiment": "negative", "category_confidence": 0.9, "sentiment_confidence": 0.9}`)
	assert.Error(t, err)
}

func TestAnthropic_Classify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "{\"category\": \"Account Issues\", \"sentiment\": \"neutral\", \"category_confidence\": 0.77, \"sentiment_confidence\": 0.66}"}],
			"stop_reason": "end_turn",
			"stop_sequence": null,
			"usage": {"input_tokens": 120, "output_tokens": 30}
		}`))
	}))
	defer srv.Close()

	a := NewAnthropic("test-key", "claude-test", nil, option.WithBaseURL(srv.URL))
	res, err := a.Classify(context.Background(), "I cannot log into my account since yesterday")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryAccount, res.Category)
	assert.Equal(t, domain.SentimentNeutral, res.Sentiment)
	assert.Equal(t, 0.77, res.Confidence.Category)
	assert.Equal(t, 0.66, res.Confidence.Sentiment)
}

func TestAnthropic_ServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"overloaded"}}`))
	}))
	defer srv.Close()

	a := NewAnthropic("test-key", "claude-test", nil, option.WithBaseURL(srv.URL))
	_, err := a.Classify(context.Background(), "I cannot log into my account since yesterday")
	assert.ErrorIs(t, err, ErrUnavailable)
}
