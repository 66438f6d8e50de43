package http

import (
	"time"

	"github.com/GriffinCanCode/edgeoptimizer/internal/domain/pipeline"
	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/logging"
	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/monitoring"
)

// Handlers serves the proxy and the /_edge admin API.
type Handlers struct {
	pipeline       *pipeline.Pipeline
	metrics        *monitoring.Metrics
	logger         *logging.Logger
	advisorEnabled bool
	started        time.Time
}

// NewHandlers creates handlers over p. metrics may be nil.
func NewHandlers(p *pipeline.Pipeline, metrics *monitoring.Metrics, logger *logging.Logger, advisorEnabled bool) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		pipeline:       p,
		metrics:        metrics,
		logger:         logger.Named("http"),
		advisorEnabled: advisorEnabled,
		started:        time.Now(),
	}
}
