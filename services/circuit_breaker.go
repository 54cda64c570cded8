package services

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/yeremiapane/tastehub/metrics"
	"github.com/yeremiapane/tastehub/utils"
)

// CircuitBreaker wraps gobreaker with Prometheus state and failure metrics.
type CircuitBreaker struct {
	*gobreaker.CircuitBreaker
	name string
}

func NewCircuitBreaker(name string) *CircuitBreaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    15 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(cbName string, from gobreaker.State, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(metrics.ServiceName, cbName).Set(stateValue(to))

			utils.InfoLogger.WithFields(logrus.Fields{
				"circuit": cbName,
				"from":    from.String(),
				"to":      to.String(),
			}).Info("Circuit breaker state changed")
		},
	})

	metrics.CircuitBreakerState.WithLabelValues(metrics.ServiceName, name).Set(0)
	return &CircuitBreaker{CircuitBreaker: cb, name: name}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	}
	return 0
}

// Execute runs fn through the breaker. Rejections while open are reported
// as gateway errors.
func (cb *CircuitBreaker) Execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cb.CircuitBreaker.Execute(fn)
	if err == nil {
		return result, nil
	}

	metrics.CircuitBreakerFailures.WithLabelValues(metrics.ServiceName, cb.name).Inc()
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &utils.GatewayError{Message: "circuit " + cb.name + " is open", Err: err}
	}
	return nil, err
}
