// Package classifier maps complaint text to a category and sentiment with
// per-axis confidence. Implementations are interchangeable behind the
// Classifier interface; callers should wrap them with WithTimeout.
package classifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ErrUnavailable marks a classification failure the caller may retry.
var ErrUnavailable = errors.New("classification unavailable")

// Result is the classifier verdict for one complaint.
type Result struct {
	Category   domain.ComplaintCategory
	Sentiment  domain.Sentiment
	Confidence domain.Confidence
}

// Validate checks enum membership and confidence bounds.
func (r Result) Validate() error {
	if !r.Category.Valid() {
		return fmt.Errorf("unknown category %q", r.Category)
	}
	if !r.Sentiment.Valid() {
		return fmt.Errorf("unknown sentiment %q", r.Sentiment)
	}
	if !r.Confidence.Valid() {
		return fmt.Errorf("confidence out of range: category=%v sentiment=%v", r.Confidence.Category, r.Confidence.Sentiment)
	}
	return nil
}

// Classifier labels complaint text.
type Classifier interface {
	Classify(ctx context.Context, text string) (Result, error)
}

// Func adapts a plain function to Classifier.
type Func func(ctx context.Context, text string) (Result, error)

// Classify calls f.
func (f Func) Classify(ctx context.Context, text string) (Result, error) {
	return f(ctx, text)
}

// ReadinessChecker is implemented by classifiers backed by a remote model.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Ready reports whether c can serve requests. Classifiers without a remote
// dependency are always ready.
func Ready(ctx context.Context, c Classifier) error {
	if rc, ok := c.(ReadinessChecker); ok {
		return rc.Ready(ctx)
	}
	return nil
}

func unavailable(err error) error {
	if errors.Is(err, ErrUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
