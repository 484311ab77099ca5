package circuitbreaker

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/seu-repo/sigec-posto/pkg/config"
)

const (
	defaultMaxRequests      = 3
	defaultFailureThreshold = 0.6
	// minRequests is how many calls a window needs before the ratio counts.
	minRequests = 3
)

// Settings configures a breaker that trips on the failure ratio of the
// current window.
type Settings struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
}

// FromConfig maps the shared circuit_breaker config section to Settings.
func FromConfig(name string, cfg config.CircuitBreakerConfig) Settings {
	s := Settings{
		Name:             name,
		Interval:         cfg.Interval,
		Timeout:          cfg.Timeout,
		FailureThreshold: cfg.FailureThreshold,
	}
	if cfg.MaxRequests > 0 {
		s.MaxRequests = uint32(cfg.MaxRequests)
	}
	return s
}

// New builds a gobreaker.CircuitBreaker that logs every state change.
// Zero MaxRequests and FailureThreshold fall back to 3 and 0.6.
func New(s Settings, log *zap.Logger) *gobreaker.CircuitBreaker {
	if s.MaxRequests == 0 {
		s.MaxRequests = defaultMaxRequests
	}
	if s.FailureThreshold <= 0 {
		s.FailureThreshold = defaultFailureThreshold
	}

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= s.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// IsShortCircuit reports whether err was returned by the breaker itself
// rather than by the protected call.
func IsShortCircuit(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
