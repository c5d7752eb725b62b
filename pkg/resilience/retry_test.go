package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

type fakeIncidents struct {
	recorded []string
	resolved []string
}

func (f *fakeIncidents) RecordIncident(jobType, provider, event, ticker, message string) (int64, error) {
	f.recorded = append(f.recorded, jobType+"/"+provider)
	return int64(len(f.recorded)), nil
}

func (f *fakeIncidents) ResolveIncidents(jobType, provider, event, ticker, resolvedBy string) (int64, error) {
	f.resolved = append(f.resolved, jobType+"/"+provider+"/"+resolvedBy)
	return 1, nil
}

func newTestExecutor(incidents IncidentRecorder) (*Executor, *[]time.Duration) {
	var slept []time.Duration
	ex := NewExecutor(NewLimiter(), incidents, nil)
	ex.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	ex.randFloat = func() float64 { return 0.5 } // zero jitter offset
	return ex, &slept
}

func testPolicy() Policy {
	return Policy{
		Provider:     "vendor",
		MaxRetries:   3,
		BaseDelay:    time.Second,
		MaxDelay:     30 * time.Second,
		MaxPerMinute: 0, // unlimited, keep the limiter out of the way
	}
}

func TestDoSucceedsFirstAttempt(t *testing.T) {
	incidents := &fakeIncidents{}
	ex, slept := newTestExecutor(incidents)

	attempts := 0
	got, err := Do(context.Background(), ex, Call{JobType: "fetch", Policy: testPolicy()},
		func(ctx context.Context) (string, error) {
			attempts++
			return "ok", nil
		})

	assert.Equal(t, nil, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 0, len(*slept))
	assert.Equal(t, 0, len(incidents.recorded))
	assert.Equal(t, 0, len(incidents.resolved))
}

func TestDoExhaustsRetries(t *testing.T) {
	incidents := &fakeIncidents{}
	ex, slept := newTestExecutor(incidents)

	attempts := 0
	_, err := Do(context.Background(), ex, Call{JobType: "fetch", Policy: testPolicy()},
		func(ctx context.Context) (string, error) {
			attempts++
			return "", fmt.Errorf("vendor down: %w", ErrTransient)
		})

	var exhausted *ExhaustedError
	assert.Equal(t, true, errors.As(err, &exhausted))
	assert.Equal(t, 4, exhausted.Attempts)
	assert.Equal(t, 4, attempts)

	// Exponential backoff between attempts: 1s, 2s, 4s.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, *slept)

	// One incident for the whole invocation, never resolved.
	assert.Equal(t, 1, len(incidents.recorded))
	assert.Equal(t, 0, len(incidents.resolved))
}

func TestDoBackoffCappedAtMaxDelay(t *testing.T) {
	ex, slept := newTestExecutor(nil)

	policy := testPolicy()
	policy.MaxRetries = 5
	policy.MaxDelay = 3 * time.Second

	_, _ = Do(context.Background(), ex, Call{JobType: "fetch", Policy: policy},
		func(ctx context.Context) (string, error) {
			return "", fmt.Errorf("still down: %w", ErrTransient)
		})

	assert.Equal(t, []time.Duration{
		time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second, 3 * time.Second,
	}, *slept)
}

func TestDoFailsFastOnNonRetryable(t *testing.T) {
	incidents := &fakeIncidents{}
	ex, slept := newTestExecutor(incidents)

	authErr := errors.New("invalid API key")

	attempts := 0
	_, err := Do(context.Background(), ex, Call{JobType: "fetch", Policy: testPolicy()},
		func(ctx context.Context) (string, error) {
			attempts++
			return "", authErr
		})

	assert.Equal(t, authErr, err)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 0, len(*slept))
	assert.Equal(t, 1, len(incidents.recorded))
	assert.Equal(t, 0, len(incidents.resolved))
}

func TestDoResolvesIncidentOnRecovery(t *testing.T) {
	incidents := &fakeIncidents{}
	ex, _ := newTestExecutor(incidents)

	attempts := 0
	got, err := Do(context.Background(), ex, Call{JobType: "fetch", Policy: testPolicy()},
		func(ctx context.Context) (string, error) {
			attempts++
			if attempts == 1 {
				return "", fmt.Errorf("blip: %w", ErrTransient)
			}
			return "recovered", nil
		})

	assert.Equal(t, nil, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, 1, len(incidents.recorded))
	assert.Equal(t, []string{"fetch/vendor/retry"}, incidents.resolved)
}

func TestDoJitterClampedAtZero(t *testing.T) {
	ex, slept := newTestExecutor(nil)
	ex.randFloat = func() float64 { return 0 } // full negative jitter

	policy := testPolicy()
	policy.MaxRetries = 1
	policy.BaseDelay = 100 * time.Millisecond
	policy.Jitter = time.Second // larger than the base delay

	_, _ = Do(context.Background(), ex, Call{JobType: "fetch", Policy: policy},
		func(ctx context.Context) (string, error) {
			return "", fmt.Errorf("down: %w", ErrTransient)
		})

	assert.Equal(t, 1, len(*slept))
	assert.Equal(t, time.Duration(0), (*slept)[0])
}

func TestDoCustomClassifier(t *testing.T) {
	ex, _ := newTestExecutor(nil)

	special := errors.New("special")
	policy := testPolicy()
	policy.MaxRetries = 1
	policy.Retryable = func(err error) bool { return errors.Is(err, special) }

	attempts := 0
	_, err := Do(context.Background(), ex, Call{JobType: "fetch", Policy: policy},
		func(ctx context.Context) (string, error) {
			attempts++
			return "", special
		})

	var exhausted *ExhaustedError
	assert.Equal(t, true, errors.As(err, &exhausted))
	assert.Equal(t, 2, attempts)
}

func TestDoRateLimitsEveryAttempt(t *testing.T) {
	incidents := &fakeIncidents{}
	limiter := NewLimiter()
	clock := newFakeClock()
	clock.install(limiter)

	ex := NewExecutor(limiter, incidents, nil)
	ex.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	ex.randFloat = func() float64 { return 0.5 }

	policy := testPolicy()
	policy.MaxRetries = 2
	policy.MaxPerMinute = 2

	_, _ = Do(context.Background(), ex, Call{JobType: "fetch", Policy: policy},
		func(ctx context.Context) (string, error) {
			return "", fmt.Errorf("down: %w", ErrTransient)
		})

	// Three attempts against a 2/min window: the third admission had to wait.
	assert.Equal(t, 1, len(clock.slept))
}

func TestDoMetricsRecordedPerAttempt(t *testing.T) {
	metrics := &captureMetrics{}
	ex := NewExecutor(NewLimiter(), nil, metrics)
	ex.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	ex.randFloat = func() float64 { return 0.5 }

	attempts := 0
	_, err := Do(context.Background(), ex, Call{JobType: "fetch", Event: "company_news", Policy: testPolicy()},
		func(ctx context.Context) (string, error) {
			attempts++
			if attempts < 3 {
				return "", fmt.Errorf("blip: %w", ErrTransient)
			}
			return "ok", nil
		})

	assert.Equal(t, nil, err)
	assert.Equal(t, 3, len(metrics.oks))
	assert.Equal(t, []bool{false, false, true}, metrics.oks)
}

type captureMetrics struct {
	oks []bool
}

func (c *captureMetrics) RecordVendorEvent(provider, event string, ok bool, latencyMs int64) {
	c.oks = append(c.oks, ok)
}
