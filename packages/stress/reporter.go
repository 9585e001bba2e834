package stress

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Reporter handles output for stress runs
type Reporter struct {
	writer     io.Writer
	noColor    bool
	noProgress bool
	verbose    bool

	green  *color.Color
	red    *color.Color
	yellow *color.Color
	cyan   *color.Color
	bold   *color.Color
	dim    *color.Color
}

// ReporterOption configures the reporter
type ReporterOption func(*Reporter)

// WithWriter sets the output writer
func WithWriter(w io.Writer) ReporterOption {
	return func(r *Reporter) {
		r.writer = w
	}
}

// WithNoColor disables colored output
func WithNoColor(noColor bool) ReporterOption {
	return func(r *Reporter) {
		r.noColor = noColor
	}
}

// WithNoProgress disables real-time progress display
func WithNoProgress(noProgress bool) ReporterOption {
	return func(r *Reporter) {
		r.noProgress = noProgress
	}
}

// WithVerbose adds latency percentiles to the per-action table
func WithVerbose(verbose bool) ReporterOption {
	return func(r *Reporter) {
		r.verbose = verbose
	}
}

// NewReporter creates a new reporter
func NewReporter(opts ...ReporterOption) *Reporter {
	r := &Reporter{
		writer: os.Stdout,
	}

	for _, opt := range opts {
		opt(r)
	}

	r.green = r.color(color.FgGreen)
	r.red = r.color(color.FgRed)
	r.yellow = r.color(color.FgYellow)
	r.cyan = r.color(color.FgCyan)
	r.bold = r.color(color.Bold)
	r.dim = r.color(color.Faint)

	return r
}

func (r *Reporter) color(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if r.noColor {
		c.DisableColor()
	}
	return c
}

// Header prints the run header: target, load shape and action mix
func (r *Reporter) Header(version, target string, config *Config, weights map[string]int) {
	fmt.Fprintln(r.writer)
	r.bold.Fprintf(r.writer, "jiraload %s\n", version)
	fmt.Fprintln(r.writer)

	r.cyan.Fprintf(r.writer, "Target: %s\n", target)

	var details []string
	if config.Mode == RateMode {
		details = append(details, fmt.Sprintf("Rate: %.1f it/s", config.Rate))
	} else {
		details = append(details, fmt.Sprintf("VUs: %d", config.VUs))
	}
	details = append(details, fmt.Sprintf("Duration: %s", formatDuration(config.Duration)))
	details = append(details, fmt.Sprintf("Max VUs: %d", config.MaxVUs))
	if config.ThinkTime > 0 {
		details = append(details, fmt.Sprintf("Think: %s", formatDuration(config.ThinkTime)))
	}
	if config.RampUp > 0 {
		details = append(details, fmt.Sprintf("Ramp-up: %s", formatDuration(config.RampUp)))
	}
	fmt.Fprintf(r.writer, "%s\n", strings.Join(details, " | "))

	if len(weights) > 0 {
		names := make([]string, 0, len(weights))
		for name := range weights {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if weights[names[i]] != weights[names[j]] {
				return weights[names[i]] > weights[names[j]]
			}
			return names[i] < names[j]
		})
		mix := make([]string, len(names))
		for i, name := range names {
			mix[i] = fmt.Sprintf("%s=%d", name, weights[name])
		}
		r.dim.Fprintf(r.writer, "Mix: %s\n", strings.Join(mix, " "))
	}
	fmt.Fprintln(r.writer)
}

// Progress prints real-time progress
func (r *Reporter) Progress(stats CurrentStats, duration time.Duration) {
	if r.noProgress {
		return
	}

	fmt.Fprint(r.writer, "\r\033[K")

	progress := float64(stats.Elapsed) / float64(duration)
	if progress > 1 {
		progress = 1
	}
	const barWidth = 30
	filled := int(progress * barWidth)
	bar := strings.Repeat("━", filled) + strings.Repeat("─", barWidth-filled)

	fmt.Fprintf(r.writer, "Progress %s %s / %s\n", bar, formatDuration(stats.Elapsed), formatDuration(duration))

	fmt.Fprintf(r.writer, "Actions: ")
	r.bold.Fprintf(r.writer, "%s", formatNumber(stats.Total))
	fmt.Fprintf(r.writer, " total | ")
	r.green.Fprintf(r.writer, "%s", formatNumber(stats.Success))
	fmt.Fprintf(r.writer, " ok | ")
	if stats.Errors > 0 {
		r.red.Fprintf(r.writer, "%s", formatNumber(stats.Errors))
	} else {
		fmt.Fprintf(r.writer, "%s", formatNumber(stats.Errors))
	}
	fmt.Fprintf(r.writer, " failed (%.2f%%)\n", stats.ErrorRate*100)

	fmt.Fprintf(r.writer, "Rate: ")
	r.cyan.Fprintf(r.writer, "%.1f", stats.RPS)
	fmt.Fprintf(r.writer, " it/s | Active VUs: %d\n", stats.ActiveVUs)

	fmt.Fprintf(r.writer, "Latency: p50: %s | p95: %s | p99: %s | max: %s\n",
		formatLatency(stats.P50),
		formatLatency(stats.P95),
		formatLatency(stats.P99),
		formatLatency(stats.Max))

	// back to the first progress line
	fmt.Fprint(r.writer, "\033[4A")
}

// ClearProgress clears the progress display
func (r *Reporter) ClearProgress() {
	if r.noProgress {
		return
	}
	fmt.Fprint(r.writer, "\033[4B\r\033[K\033[A\r\033[K\033[A\r\033[K\033[A\r\033[K")
}

// Summary prints the final summary
func (r *Reporter) Summary(summary *Summary, thresholdResults []ThresholdResult) {
	fmt.Fprintln(r.writer)
	r.bold.Fprintln(r.writer, "LOAD TEST SUMMARY")
	fmt.Fprintln(r.writer, strings.Repeat("─", 40))

	fmt.Fprintf(r.writer, "Duration:   %s\n", formatDuration(summary.Duration))
	fmt.Fprintf(r.writer, "Total:      ")
	r.bold.Fprintf(r.writer, "%s", formatNumber(summary.TotalRequests))
	fmt.Fprintf(r.writer, " actions (%.1f it/s)\n", summary.RPS)

	fmt.Fprintf(r.writer, "Success:    ")
	r.green.Fprintf(r.writer, "%s", formatNumber(summary.SuccessCount))
	fmt.Fprintf(r.writer, " (%.1f%%)\n", summary.SuccessRate*100)

	fmt.Fprintf(r.writer, "Failed:     ")
	if summary.ErrorCount > 0 {
		r.red.Fprintf(r.writer, "%s", formatNumber(summary.ErrorCount))
	} else {
		fmt.Fprintf(r.writer, "%s", formatNumber(summary.ErrorCount))
	}
	fmt.Fprintf(r.writer, " (%.1f%%)\n", summary.ErrorRate*100)

	if summary.TimeoutCount > 0 {
		fmt.Fprintf(r.writer, "Timeouts:   ")
		r.yellow.Fprintf(r.writer, "%s\n", formatNumber(summary.TimeoutCount))
	}

	fmt.Fprintln(r.writer)
	r.bold.Fprintln(r.writer, "LATENCY (ms)")
	fmt.Fprintf(r.writer, "  p50: %-6s | p95: %-6s | p99: %-6s | max: %s\n",
		formatLatencyMs(summary.P50),
		formatLatencyMs(summary.P95),
		formatLatencyMs(summary.P99),
		formatLatencyMs(summary.Max))
	fmt.Fprintf(r.writer, "  min: %-6s | mean: %-5s | stddev: %s\n",
		formatLatencyMs(summary.Min),
		formatLatencyMs(summary.Mean),
		formatLatencyMs(summary.StdDev))

	if len(summary.ActionBreakdown) > 0 {
		r.actionTable(summary)
	}

	if len(summary.ErrorKinds) > 0 {
		fmt.Fprintln(r.writer)
		r.bold.Fprintln(r.writer, "ERRORS")
		for _, kind := range SortedErrorKinds(summary.ErrorKinds) {
			fmt.Fprintf(r.writer, "  %-24s ", kind)
			r.red.Fprintf(r.writer, "%s\n", formatNumber(summary.ErrorKinds[kind]))
		}
	}

	if len(thresholdResults) > 0 {
		fmt.Fprintln(r.writer)
		r.bold.Fprintln(r.writer, "THRESHOLDS")
		allPassed := true
		for _, tr := range thresholdResults {
			if tr.Passed {
				r.green.Fprintf(r.writer, "  ✓ ")
			} else {
				r.red.Fprintf(r.writer, "  ✗ ")
				allPassed = false
			}
			fmt.Fprintf(r.writer, "%s %s    (actual: %s)\n", tr.Name, tr.Expected, tr.Actual)
		}

		fmt.Fprintln(r.writer)
		if allPassed {
			r.green.Fprintln(r.writer, "All thresholds passed!")
		} else {
			r.red.Fprintln(r.writer, "Some thresholds failed!")
		}
	}

	fmt.Fprintln(r.writer)
}

func (r *Reporter) actionTable(summary *Summary) {
	fmt.Fprintln(r.writer)
	r.bold.Fprintln(r.writer, "ACTIONS")

	width := 0
	for _, name := range summary.ActionNames() {
		if len(name) > width {
			width = len(name)
		}
	}

	for _, name := range summary.ActionNames() {
		as := summary.ActionBreakdown[name]
		fmt.Fprintf(r.writer, "  %-*s  %8s ok", width, name, formatNumber(as.Success))
		if as.Errors > 0 {
			r.red.Fprintf(r.writer, "  %6s failed", formatNumber(as.Errors))
		} else {
			r.dim.Fprintf(r.writer, "  %6s failed", "0")
		}
		if r.verbose {
			fmt.Fprintf(r.writer, "  p50 %s  p95 %s  p99 %s  mean %s",
				formatLatency(as.P50), formatLatency(as.P95), formatLatency(as.P99), formatLatency(as.Mean))
		} else {
			fmt.Fprintf(r.writer, "  p95 %s", formatLatency(as.P95))
		}
		fmt.Fprintln(r.writer)
	}
}

type jsonLatency struct {
	P50    int64 `json:"p50"`
	P95    int64 `json:"p95"`
	P99    int64 `json:"p99"`
	Min    int64 `json:"min,omitempty"`
	Max    int64 `json:"max,omitempty"`
	Mean   int64 `json:"mean"`
	StdDev int64 `json:"stddev,omitempty"`
}

type jsonAction struct {
	Total      int64            `json:"total"`
	Success    int64            `json:"success"`
	Errors     int64            `json:"errors"`
	LatencyMs  jsonLatency      `json:"latencyMs"`
	ErrorKinds map[string]int64 `json:"errorKinds,omitempty"`
}

type jsonThreshold struct {
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

type jsonSummary struct {
	Duration string `json:"duration"`
	Actions  struct {
		Total    int64 `json:"total"`
		Success  int64 `json:"success"`
		Failed   int64 `json:"failed"`
		Timeouts int64 `json:"timeouts"`
	} `json:"actions"`
	Rates struct {
		RPS         float64 `json:"rps"`
		SuccessRate float64 `json:"successRate"`
		ErrorRate   float64 `json:"errorRate"`
	} `json:"rates"`
	LatencyMs  jsonLatency           `json:"latencyMs"`
	ErrorKinds map[string]int64      `json:"errorKinds,omitempty"`
	Breakdown  map[string]jsonAction `json:"breakdown,omitempty"`
	Thresholds []jsonThreshold       `json:"thresholds,omitempty"`
}

// JSONSummary writes the summary as an indented JSON document
func (r *Reporter) JSONSummary(summary *Summary, thresholdResults []ThresholdResult) error {
	var out jsonSummary
	out.Duration = summary.Duration.String()
	out.Actions.Total = summary.TotalRequests
	out.Actions.Success = summary.SuccessCount
	out.Actions.Failed = summary.ErrorCount
	out.Actions.Timeouts = summary.TimeoutCount
	out.Rates.RPS = summary.RPS
	out.Rates.SuccessRate = summary.SuccessRate
	out.Rates.ErrorRate = summary.ErrorRate
	out.LatencyMs = jsonLatency{
		P50:    summary.P50.Milliseconds(),
		P95:    summary.P95.Milliseconds(),
		P99:    summary.P99.Milliseconds(),
		Min:    summary.Min.Milliseconds(),
		Max:    summary.Max.Milliseconds(),
		Mean:   summary.Mean.Milliseconds(),
		StdDev: summary.StdDev.Milliseconds(),
	}
	if len(summary.ErrorKinds) > 0 {
		out.ErrorKinds = summary.ErrorKinds
	}

	if len(summary.ActionBreakdown) > 0 {
		out.Breakdown = make(map[string]jsonAction, len(summary.ActionBreakdown))
		for name, as := range summary.ActionBreakdown {
			action := jsonAction{
				Total:   as.Total,
				Success: as.Success,
				Errors:  as.Errors,
				LatencyMs: jsonLatency{
					P50:  as.P50.Milliseconds(),
					P95:  as.P95.Milliseconds(),
					P99:  as.P99.Milliseconds(),
					Mean: as.Mean.Milliseconds(),
				},
			}
			if len(as.ErrorKinds) > 0 {
				action.ErrorKinds = as.ErrorKinds
			}
			out.Breakdown[name] = action
		}
	}

	for _, tr := range thresholdResults {
		out.Thresholds = append(out.Thresholds, jsonThreshold(tr))
	}

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// Error prints an error message
func (r *Reporter) Error(format string, args ...any) {
	r.red.Fprintf(r.writer, "Error: "+format+"\n", args...)
}

// Warn prints a warning message
func (r *Reporter) Warn(format string, args ...any) {
	r.yellow.Fprintf(r.writer, "Warning: "+format+"\n", args...)
}

// Info prints an info message
func (r *Reporter) Info(format string, args ...any) {
	fmt.Fprintf(r.writer, format+"\n", args...)
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	if seconds == 0 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dm %02ds", minutes, seconds)
}

func formatLatency(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dμs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatLatencyMs(d time.Duration) string {
	ms := float64(d.Microseconds()) / 1000
	if ms < 1 {
		return fmt.Sprintf("%.2f", ms)
	}
	if ms < 10 {
		return fmt.Sprintf("%.1f", ms)
	}
	return fmt.Sprintf("%.0f", ms)
}

// formatNumber formats a number with thousands separators
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if n < 1000 {
		return s
	}

	start := len(s) % 3
	if start == 0 {
		start = 3
	}

	var b strings.Builder
	b.WriteString(s[:start])
	for i := start; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
