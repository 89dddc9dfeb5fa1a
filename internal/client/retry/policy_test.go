package retry

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type classified Class

func (c classified) Error() string     { return fmt.Sprintf("class %d", int(c)) }
func (c classified) RetryClass() Class { return Class(c) }

func TestBackoff(t *testing.T) {
	tests := []struct {
		name    string
		base    time.Duration
		attempt int
		want    time.Duration
	}{
		{"first attempt", time.Second, 1, time.Second},
		{"second attempt", time.Second, 2, 2 * time.Second},
		{"third attempt", time.Second, 3, 4 * time.Second},
		{"zero attempt", time.Second, 0, time.Second},
		{"custom base", 100 * time.Millisecond, 4, 800 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Backoff(tt.base, tt.attempt))
		})
	}
}

func TestPolicy_NewBackOffMatchesBackoff(t *testing.T) {
	p := Policy{BaseDelay: 10 * time.Millisecond, MaxRetries: 3}
	b := p.NewBackOff()

	for attempt := 1; attempt <= 4; attempt++ {
		assert.Equal(t, p.Backoff(attempt), b.NextBackOff(), "attempt %d", attempt)
	}
}

func TestPolicy_Decide(t *testing.T) {
	p := DefaultPolicy()
	wrapped := fmt.Errorf("replay: %w", classified(Terminal))

	tests := []struct {
		name     string
		err      error
		failures int
		want     Decision
	}{
		{"terminal abandons at once", classified(Terminal), 1, AbandonNow},
		{"wrapped terminal", wrapped, 1, AbandonNow},
		{"transient first failure", classified(Transient), 1, Retry},
		{"transient second failure", classified(Transient), 2, Retry},
		{"transient hits max", classified(Transient), 3, AbandonMax},
		{"unknown error is transient", errors.New("boom"), 1, Retry},
		{"auth halts", classified(Auth), 1, Halt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.Decide(tt.err, tt.failures))
		})
	}
}

func TestPolicy_ZeroValueUsesDefaults(t *testing.T) {
	var p Policy
	assert.Equal(t, time.Second, p.Backoff(1))
	assert.Equal(t, AbandonMax, p.Decide(errors.New("x"), DefaultMaxRetries))
}
