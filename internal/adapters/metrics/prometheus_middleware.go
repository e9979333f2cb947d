package metrics

import (
	"context"
	"time"

	"github.com/riceops/production-planning/internal/application/common"
)

// PrometheusMiddleware records duration and success of every mediator request.
// Request names drop the package prefix: "*commands.ExpandPlanCommand" becomes "ExpandPlanCommand".
func PrometheusMiddleware(collector *CommandMetricsCollector) common.Middleware {
	return func(ctx context.Context, request common.Request, next common.HandlerFunc) (common.Response, error) {
		if collector == nil {
			return next(ctx, request)
		}

		start := time.Now()
		response, err := next(ctx, request)
		collector.RecordCommandExecution(common.RequestName(request), time.Since(start).Seconds(), err == nil)

		return response, err
	}
}
