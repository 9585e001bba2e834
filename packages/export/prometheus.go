package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/jiraload/packages/stress"
)

const prefix = "jiraload"

// WritePrometheus writes summary in Prometheus text format. labels are
// added to every sample, for example the run id.
func WritePrometheus(w io.Writer, summary *stress.Summary, thresholds []stress.ThresholdResult, labels map[string]string) error {
	pw := &promWriter{w: w, base: formatLabels(labels)}

	pw.family("actions_total", "counter", "Actions run, by outcome")
	pw.sample("actions_total", float64(summary.SuccessCount), "outcome", "success")
	pw.sample("actions_total", float64(summary.ErrorCount-summary.TimeoutCount), "outcome", "error")
	pw.sample("actions_total", float64(summary.TimeoutCount), "outcome", "timeout")

	pw.family("actions_per_second", "gauge", "Average action throughput over the run")
	pw.sample("actions_per_second", summary.RPS)

	pw.family("run_duration_seconds", "gauge", "Wall time of the run")
	pw.sample("run_duration_seconds", summary.Duration.Seconds())

	pw.family("action_duration_seconds", "gauge", "Action latency quantiles over all actions")
	for _, q := range []struct {
		name string
		d    time.Duration
	}{
		{"0.5", summary.P50}, {"0.95", summary.P95}, {"0.99", summary.P99},
	} {
		pw.sample("action_duration_seconds", q.d.Seconds(), "quantile", q.name)
	}

	names := summary.ActionNames()
	if len(names) > 0 {
		pw.family("action_requests_total", "counter", "Runs per action, by outcome")
		for _, name := range names {
			as := summary.ActionBreakdown[name]
			pw.sample("action_requests_total", float64(as.Success), "action", name, "outcome", "success")
			pw.sample("action_requests_total", float64(as.Errors), "action", name, "outcome", "error")
		}

		pw.family("action_latency_seconds", "gauge", "Latency quantiles per action")
		for _, name := range names {
			as := summary.ActionBreakdown[name]
			pw.sample("action_latency_seconds", as.P50.Seconds(), "action", name, "quantile", "0.5")
			pw.sample("action_latency_seconds", as.P95.Seconds(), "action", name, "quantile", "0.95")
			pw.sample("action_latency_seconds", as.P99.Seconds(), "action", name, "quantile", "0.99")
		}
	}

	if len(summary.ErrorKinds) > 0 {
		pw.family("errors_total", "counter", "Failed actions by error kind")
		for _, kind := range stress.SortedErrorKinds(summary.ErrorKinds) {
			pw.sample("errors_total", float64(summary.ErrorKinds[kind]), "kind", kind)
		}
	}

	if len(thresholds) > 0 {
		pw.family("threshold_passed", "gauge", "1 when the threshold held")
		for _, t := range thresholds {
			v := 0.0
			if t.Passed {
				v = 1
			}
			pw.sample("threshold_passed", v, "threshold", t.Name)
		}
	}

	return pw.err
}

// promWriter keeps the first write error so the writer reads top to bottom
type promWriter struct {
	w    io.Writer
	base string
	err  error
}

func (p *promWriter) family(name, kind, help string) {
	p.printf("# HELP %s_%s %s\n# TYPE %s_%s %s\n", prefix, name, help, prefix, name, kind)
}

func (p *promWriter) sample(name string, value float64, pairs ...string) {
	var parts []string
	if p.base != "" {
		parts = append(parts, p.base)
	}
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, fmt.Sprintf(`%s="%s"`, pairs[i], sanitizeLabel(pairs[i+1])))
	}
	labels := ""
	if len(parts) > 0 {
		labels = "{" + strings.Join(parts, ",") + "}"
	}
	p.printf("%s_%s%s %g\n", prefix, name, labels, value)
}

func (p *promWriter) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func formatLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf(`%s="%s"`, k, sanitizeLabel(labels[k]))
	}
	return strings.Join(parts, ",")
}

// sanitizeLabel makes a string safe for use as a Prometheus label value
func sanitizeLabel(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}
