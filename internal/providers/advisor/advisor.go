package advisor

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/edgeoptimizer/internal/providers/http/client"
	"github.com/GriffinCanCode/edgeoptimizer/internal/shared/types"
)

// Call outcomes reported to metrics.
const (
	OutcomeHit      = "hit"
	OutcomeMiss     = "miss"
	OutcomeDisabled = "disabled"
	OutcomeError    = "error"
	OutcomeOpen     = "open"
)

// ErrNoCredential is logged when Advise is called without an API key.
var ErrNoCredential = errors.New("advisor credential not configured")

// Options configures an Advisor.
type Options struct {
	APIKey          string
	Endpoint        string
	Model           string
	Timeout         time.Duration
	RequestsPerSec  float64
	BreakerFailures uint32
}

// Advisor calls the generative text service.
type Advisor struct {
	opts     Options
	endpoint string
	client   *client.Client
	logger   *zap.Logger
	metrics  *monitoring.Metrics
}

// New creates an advisor. A nil metrics disables instrumentation.
func New(opts Options, logger *zap.Logger, metrics *monitoring.Metrics) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.BreakerFailures == 0 {
		opts.BreakerFailures = 5
	}

	a := &Advisor{
		opts:     opts,
		endpoint: strings.ReplaceAll(opts.Endpoint, "{model}", opts.Model),
		logger:   logger.Named("advisor"),
		metrics:  metrics,
	}

	breaker := resilience.New("advisor", resilience.Settings{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= opts.BreakerFailures
		},
		OnStateChange: func(name string, from, to resilience.State) {
			a.logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if a.metrics != nil {
				a.metrics.SetBreakerState(name, int(to))
			}
		},
	})

	a.client = client.New(client.Options{
		Name:           "advisor",
		Timeout:        opts.Timeout,
		RequestsPerSec: opts.RequestsPerSec,
		Breaker:        breaker,
	})
	a.client.SetHeader("Content-Type", "application/json")

	return a
}

// Enabled reports whether a credential is configured.
func (a *Advisor) Enabled() bool {
	return a != nil && a.opts.APIKey != ""
}

// Advise returns a suggestion for page, or nil. It never fails.
func (a *Advisor) Advise(ctx context.Context, page types.PageContext, site string) *types.Suggestion {
	if a == nil {
		return nil
	}
	if !a.Enabled() {
		a.record(OutcomeDisabled, 0)
		a.logger.Debug("advisor skipped", zap.String("site", site), zap.Error(ErrNoCredential))
		return nil
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	text, err := a.generate(ctx, BuildPrompt(page, site))
	if err != nil {
		outcome := OutcomeError
		if errors.Is(err, client.ErrUnavailable) || resilience.Rejected(err) {
			outcome = OutcomeOpen
		}
		a.record(outcome, time.Since(start))
		a.logger.Warn("advisor call failed", zap.String("site", site), zap.Error(err))
		return nil
	}

	s, err := ParseReply(text)
	if err != nil {
		a.record(OutcomeMiss, time.Since(start))
		a.logger.Warn("advisor reply unusable", zap.String("site", site), zap.Error(err))
		return nil
	}

	a.record(OutcomeHit, time.Since(start))
	return s
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// generate performs the HTTP exchange and returns the reply text.
func (a *Advisor) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := sonic.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := a.client.Request(ctx)
	if err != nil {
		return "", err
	}

	resp, err := a.client.ExecuteWithBreaker(func() (*resty.Response, error) {
		resp, err := req.
			SetHeader("x-goog-api-key", a.opts.APIKey).
			SetBody(payload).
			Post(a.endpoint)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() != http.StatusOK {
			return resp, fmt.Errorf("advisor returned status %d", resp.StatusCode())
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}

	var envelope generateResponse
	if err := sonic.Unmarshal(resp.Body(), &envelope); err != nil {
		return "", fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.Error != nil {
		return "", fmt.Errorf("advisor error %d %s: %s", envelope.Error.Code, envelope.Error.Status, envelope.Error.Message)
	}
	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("advisor reply has no candidates")
	}

	var text strings.Builder
	for _, p := range envelope.Candidates[0].Content.Parts {
		text.WriteString(p.Text)
	}
	return text.String(), nil
}

func (a *Advisor) record(outcome string, d time.Duration) {
	if a.metrics != nil {
		a.metrics.RecordAdvisorCall(outcome, d)
	}
}
