package telemetry

import (
	"context"
	"sort"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys.
const (
	ProfilingLabelOperation = "operation"
	ProfilingLabelProvider  = "provider"
	ProfilingLabelRoute     = "route"
)

// MaxLabelValueLength truncates label values to keep cardinality bounded
const MaxLabelValueLength = 64

// WithProfilingLabels runs fn with pprof labels attached, so CPU samples can
// be sliced by provider or route in Pyroscope. Empty keys and values are
// dropped. Never pass per-request identifiers here.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := labelPairs(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// ImportLabels labels one import job.
func ImportLabels(provider string) map[string]string {
	return map[string]string{
		ProfilingLabelOperation: "import",
		ProfilingLabelProvider:  provider,
	}
}

func labelPairs(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k, v := range labels {
		if k != "" && v != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		v := labels[k]
		if len(v) > MaxLabelValueLength {
			v = v[:MaxLabelValueLength]
		}
		pairs = append(pairs, k, v)
	}
	return pairs
}
