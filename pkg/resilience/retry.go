package resilience

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// Policy configures one call-site's retry and admission behavior.
type Policy struct {
	Provider     string
	MaxRetries   int
	BaseDelay    time.Duration
	MaxDelay     time.Duration
	MaxPerMinute int
	Window       time.Duration // defaults to one minute
	Jitter       time.Duration
	Retryable    func(error) bool // defaults to IsTransient
}

func DefaultPolicy(provider string) Policy {
	return Policy{
		Provider:     provider,
		MaxRetries:   3,
		BaseDelay:    time.Second,
		MaxDelay:     30 * time.Second,
		MaxPerMinute: 10,
		Jitter:       500 * time.Millisecond,
	}
}

// Call identifies one decorated invocation for incident and metric keying.
type Call struct {
	JobType string
	Event   string
	Ticker  string
	Policy  Policy
}

// IncidentRecorder is the durable open/resolve incident collaborator.
type IncidentRecorder interface {
	RecordIncident(jobType, provider, event, ticker, message string) (int64, error)
	ResolveIncidents(jobType, provider, event, ticker, resolvedBy string) (int64, error)
}

// MetricRecorder receives best-effort vendor call telemetry. Implementations
// must never fail the originating operation.
type MetricRecorder interface {
	RecordVendorEvent(provider, event string, ok bool, latencyMs int64)
}

// Executor wraps operations with rate-limited, incident-tracked retries.
// Incident and metric recorders may be nil.
type Executor struct {
	limiter   *Limiter
	incidents IncidentRecorder
	metrics   MetricRecorder

	sleep     func(context.Context, time.Duration) error
	randFloat func() float64
}

func NewExecutor(limiter *Limiter, incidents IncidentRecorder, metrics MetricRecorder) *Executor {
	if limiter == nil {
		limiter = NewLimiter()
	}
	return &Executor{
		limiter:   limiter,
		incidents: incidents,
		metrics:   metrics,
		sleep:     sleepCtx,
		randFloat: rand.Float64,
	}
}

// Do runs op under call's policy: limiter admission before every attempt,
// exponential backoff with jitter between retryable failures, fail-fast on
// non-retryable ones. The first failure of an invocation opens an incident;
// success on a later attempt resolves it with resolved_by="retry". After
// MaxRetries+1 failed attempts the last error surfaces inside ExhaustedError.
func Do[T any](ctx context.Context, ex *Executor, call Call, op func(context.Context) (T, error)) (T, error) {
	var zero T

	policy := call.Policy
	retryable := policy.Retryable
	if retryable == nil {
		retryable = IsTransient
	}
	window := policy.Window
	if window == 0 {
		window = time.Minute
	}

	incidentOpen := false

	for attempt := 1; ; attempt++ {
		if err := ex.limiter.Acquire(ctx, policy.Provider, policy.MaxPerMinute, window); err != nil {
			return zero, err
		}

		start := time.Now()
		result, err := op(ctx)
		ex.recordMetric(policy.Provider, call.Event, err == nil, time.Since(start))

		if err == nil {
			if attempt > 1 && incidentOpen {
				ex.resolveIncident(call, "retry")
			}
			return result, nil
		}

		if !incidentOpen {
			ex.openIncident(call, err)
			incidentOpen = true
		}

		if !retryable(err) {
			return zero, err
		}

		if attempt == policy.MaxRetries+1 {
			return zero, &ExhaustedError{
				JobType:  call.JobType,
				Provider: policy.Provider,
				Attempts: attempt,
				Last:     err,
			}
		}

		delay := backoffDelay(policy, attempt, ex.randFloat)
		slog.Warn("retrying after transient failure",
			"job", call.JobType, "provider", policy.Provider,
			"attempt", attempt, "delay", delay, "error", err)

		if err := ex.sleep(ctx, delay); err != nil {
			return zero, err
		}
	}
}

// backoffDelay is min(base * 2^(attempt-1), max) plus a uniform jitter in
// [-Jitter, +Jitter], clamped at zero.
func backoffDelay(p Policy, attempt int, randFloat func() float64) time.Duration {
	delay := p.BaseDelay << (attempt - 1)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	if p.Jitter > 0 {
		delay += time.Duration((randFloat()*2 - 1) * float64(p.Jitter))
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}

func (ex *Executor) openIncident(call Call, cause error) {
	if ex.incidents == nil {
		return
	}
	_, err := ex.incidents.RecordIncident(call.JobType, call.Policy.Provider, call.Event, call.Ticker, cause.Error())
	if err != nil {
		slog.Error("error recording incident", "job", call.JobType, "provider", call.Policy.Provider, "error", err)
	}
}

func (ex *Executor) resolveIncident(call Call, resolvedBy string) {
	if ex.incidents == nil {
		return
	}
	_, err := ex.incidents.ResolveIncidents(call.JobType, call.Policy.Provider, call.Event, call.Ticker, resolvedBy)
	if err != nil {
		slog.Error("error resolving incident", "job", call.JobType, "provider", call.Policy.Provider, "error", err)
	}
}

func (ex *Executor) recordMetric(provider, event string, ok bool, latency time.Duration) {
	if ex.metrics == nil {
		return
	}
	ex.metrics.RecordVendorEvent(provider, event, ok, latency.Milliseconds())
}
