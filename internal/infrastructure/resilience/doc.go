/*
Package resilience wraps github.com/sony/gobreaker with the breaker API used
across the proxy.

The advisor client runs every call through a Breaker so that a failing or
slow AI endpoint is skipped entirely while open, and pages are served with
the non-AI rewrite rules only.

# Usage

	breaker := resilience.New("advisor", resilience.Settings{
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Info("breaker state", zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	reply, err := resilience.Do(breaker, func() ([]byte, error) {
		return client.Call(ctx)
	})
	if resilience.Rejected(err) {
		// skipped without a network call
	}

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           v
	                                         Open
*/
package resilience
