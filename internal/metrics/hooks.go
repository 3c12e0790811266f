package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/matzehuels/attacktree/pkg/normalize"
	"github.com/matzehuels/attacktree/pkg/observability"
)

// OnNormalizeStart records the envelope size.
func (r *Registry) OnNormalizeStart(_ context.Context, payloadBytes int) {
	r.PayloadBytes.Observe(float64(payloadBytes))
}

// OnNormalizeComplete records the outcome, duration and tree size.
func (r *Registry) OnNormalizeComplete(_ context.Context, nodeCount int, duration time.Duration, err error) {
	r.NormalizeDuration.Observe(duration.Seconds())
	switch {
	case err == nil:
		r.NormalizeTotal.WithLabelValues("ok").Inc()
		r.TreeNodes.Observe(float64(nodeCount))
	case errors.Is(err, normalize.ErrNoData):
		r.NormalizeTotal.WithLabelValues("no_data").Inc()
	default:
		r.NormalizeTotal.WithLabelValues("error").Inc()
	}
}

// OnValidationIssue counts one anomaly by code.
func (r *Registry) OnValidationIssue(_ context.Context, code string) {
	r.ValidationIssues.WithLabelValues(code).Inc()
}

// OnLayoutStart is a no-op; the duration is recorded on completion.
func (r *Registry) OnLayoutStart(context.Context, int) {}

// OnLayoutComplete records the layout duration.
func (r *Registry) OnLayoutComplete(_ context.Context, _, _ int, duration time.Duration) {
	r.LayoutDuration.Observe(duration.Seconds())
}

// OnExportStart counts an export by style.
func (r *Registry) OnExportStart(_ context.Context, styled bool) {
	r.ExportTotal.WithLabelValues(strconv.FormatBool(styled)).Inc()
}

// OnExportComplete records the export duration and text size.
func (r *Registry) OnExportComplete(_ context.Context, textBytes int, duration time.Duration) {
	r.ExportDuration.Observe(duration.Seconds())
	r.DiagramBytes.Observe(float64(textBytes))
}

// OnCacheHit counts a hit.
func (r *Registry) OnCacheHit(_ context.Context, entryType string) {
	r.CacheHits.WithLabelValues(entryType).Inc()
}

// OnCacheMiss counts a miss.
func (r *Registry) OnCacheMiss(_ context.Context, entryType string) {
	r.CacheMisses.WithLabelValues(entryType).Inc()
}

// OnCacheSet counts written bytes.
func (r *Registry) OnCacheSet(_ context.Context, entryType string, size int) {
	r.CacheSetBytes.WithLabelValues(entryType).Add(float64(size))
}

// OnRequest tracks an in-flight request.
func (r *Registry) OnRequest(context.Context, string, string) {
	r.HTTPRequestsInFlight.Inc()
}

// OnResponse records a finished request.
func (r *Registry) OnResponse(_ context.Context, method, route string, status int, duration time.Duration) {
	r.HTTPRequestsInFlight.Dec()
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Ensure Registry implements every hook interface.
var (
	_ observability.PipelineHooks = (*Registry)(nil)
	_ observability.CacheHooks    = (*Registry)(nil)
	_ observability.HTTPHooks     = (*Registry)(nil)
)
