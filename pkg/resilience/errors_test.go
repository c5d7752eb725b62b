package resilience

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/assert/v2"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "marked transient", err: fmt.Errorf("x: %w", ErrTransient), want: true},
		{name: "deadline exceeded", err: context.DeadlineExceeded, want: true},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "net timeout", err: timeoutErr{}, want: true},
		{name: "http 429", err: &StatusError{Code: 429}, want: true},
		{name: "http 503", err: &StatusError{Code: 503}, want: true},
		{name: "http 401", err: &StatusError{Code: 401}, want: false},
		{name: "http 400", err: &StatusError{Code: 400}, want: false},
		{name: "plain error", err: errors.New("bad config"), want: false},
		{name: "wrapped status", err: fmt.Errorf("call: %w", &StatusError{Code: 500}), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestExhaustedErrorUnwraps(t *testing.T) {
	cause := fmt.Errorf("down: %w", ErrTransient)
	err := &ExhaustedError{JobType: "fetch", Provider: "vendor", Attempts: 4, Last: cause}

	assert.Equal(t, true, errors.Is(err, ErrTransient))
}
