package classifier

import (
	"context"
	"fmt"
	"time"
)

type timeoutClassifier struct {
	next    Classifier
	timeout time.Duration
}

// WithTimeout bounds every call to next. Failures, timeouts, and invalid
// verdicts all surface as ErrUnavailable; a timeout also wraps
// context.DeadlineExceeded.
func WithTimeout(next Classifier, timeout time.Duration) Classifier {
	return &timeoutClassifier{next: next, timeout: timeout}
}

type outcome struct {
	result Result
	err    error
}

func (t *timeoutClassifier) Classify(ctx context.Context, text string) (Result, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	// Buffered so an implementation that ignores ctx can still finish and exit.
	done := make(chan outcome, 1)
	go func() {
		res, err := t.next.Classify(ctx, text)
		done <- outcome{result: res, err: err}
	}()

	select {
	case <-ctx.Done():
		return Result{}, unavailable(ctx.Err())
	case out := <-done:
		if out.err != nil {
			return Result{}, unavailable(out.err)
		}
		if err := out.result.Validate(); err != nil {
			return Result{}, unavailable(fmt.Errorf("invalid verdict: %w", err))
		}
		return out.result, nil
	}
}

func (t *timeoutClassifier) Ready(ctx context.Context) error {
	return Ready(ctx, t.next)
}
