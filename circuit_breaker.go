package tejproto

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// CircuitBreaker guards the dispatch path to one endpoint. When open, it
// fails fast instead of dialing a server that keeps refusing frames.
type CircuitBreaker interface {
	Execute(fn func() error) error
	State() string
}

// NewCircuitBreakerConfig returns a factory creating one breaker per
// endpoint, for DispatcherConfig.NewCircuitBreaker.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) func(endpoint string) CircuitBreaker {
	return func(endpoint string) CircuitBreaker {
		settings := gobreaker.Settings{
			Name:        endpoint,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		}
		return &sonyBreaker{cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
	}
}

// sonyBreaker adapts gobreaker to the error-only dispatch path.
type sonyBreaker struct {
	cb *gobreaker.CircuitBreaker[struct{}]
}

func (b *sonyBreaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

func (b *sonyBreaker) State() string {
	return b.cb.State().String()
}
