package stress

import (
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// ErrorClassifier maps an action error to a short kind used for counting.
type ErrorClassifier func(error) string

func defaultClassifier(err error) string {
	if err == nil {
		return ""
	}
	return "error"
}

// Metrics collects and aggregates stress run metrics
type Metrics struct {
	mu sync.RWMutex

	totalRequests   atomic.Int64
	successRequests atomic.Int64
	errorRequests   atomic.Int64
	timeoutRequests atomic.Int64

	// latency in microseconds
	histogram *hdrhistogram.Histogram

	actions    map[string]*ActionMetrics
	errorKinds map[string]int64
	classify   ErrorClassifier

	timeSeries    []TimePoint
	lastTimePoint time.Time

	startTime time.Time
	endTime   time.Time

	activeVUs atomic.Int32
}

// ActionMetrics holds metrics for one action
type ActionMetrics struct {
	Name       string
	Total      atomic.Int64
	Success    atomic.Int64
	Errors     atomic.Int64
	Histogram  *hdrhistogram.Histogram
	errorKinds map[string]int64
	mu         sync.Mutex
}

// TimePoint represents a point in time for the time series
type TimePoint struct {
	Timestamp time.Time
	Requests  int64
	Errors    int64
	P50       time.Duration
	P95       time.Duration
	P99       time.Duration
	ActiveVUs int32
	RPS       float64
}

// MetricsOption configures Metrics
type MetricsOption func(*Metrics)

// WithErrorClassifier sets how errors are grouped in the summary
func WithErrorClassifier(c ErrorClassifier) MetricsOption {
	return func(m *Metrics) {
		if c != nil {
			m.classify = c
		}
	}
}

// NewMetrics creates a new Metrics collector
func NewMetrics(opts ...MetricsOption) *Metrics {
	m := &Metrics{
		// 1us to 60s range, 3 significant digits
		histogram:  hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
		actions:    make(map[string]*ActionMetrics),
		errorKinds: make(map[string]int64),
		classify:   defaultClassifier,
		timeSeries: make([]TimePoint, 0, 1000),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start marks the beginning of the run
func (m *Metrics) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startTime = time.Now()
	m.lastTimePoint = m.startTime
}

// Stop marks the end of the run
func (m *Metrics) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endTime = time.Now()
}

func latencyUs(d time.Duration) int64 {
	us := d.Microseconds()
	if us < minLatencyUs {
		return minLatencyUs
	}
	if us > maxLatencyUs {
		return maxLatencyUs
	}
	return us
}

// Record records one action result
func (m *Metrics) Record(name string, duration time.Duration, err error) {
	m.totalRequests.Add(1)
	if err != nil {
		m.errorRequests.Add(1)
	} else {
		m.successRequests.Add(1)
	}

	var kind string
	if err != nil {
		kind = m.classify(err)
	}

	m.mu.Lock()
	_ = m.histogram.RecordValue(latencyUs(duration))
	if kind != "" {
		m.errorKinds[kind]++
	}
	m.mu.Unlock()

	if name == "" {
		return
	}
	am := m.action(name)
	am.Total.Add(1)
	if err != nil {
		am.Errors.Add(1)
	} else {
		am.Success.Add(1)
	}

	am.mu.Lock()
	_ = am.Histogram.RecordValue(latencyUs(duration))
	if kind != "" {
		am.errorKinds[kind]++
	}
	am.mu.Unlock()
}

func (m *Metrics) action(name string) *ActionMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	am, ok := m.actions[name]
	if !ok {
		am = &ActionMetrics{
			Name:       name,
			Histogram:  hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
			errorKinds: make(map[string]int64),
		}
		m.actions[name] = am
	}
	return am
}

// RecordTimeout records an action cut short by the end of the run or its
// deadline
func (m *Metrics) RecordTimeout(name string) {
	m.totalRequests.Add(1)
	m.timeoutRequests.Add(1)
	m.errorRequests.Add(1)

	m.mu.Lock()
	m.errorKinds["timeout"]++
	m.mu.Unlock()

	if name == "" {
		return
	}
	am := m.action(name)
	am.Total.Add(1)
	am.Errors.Add(1)
	am.mu.Lock()
	am.errorKinds["timeout"]++
	am.mu.Unlock()
}

// SetActiveVUs sets the current number of active virtual users
func (m *Metrics) SetActiveVUs(n int32) {
	m.activeVUs.Store(n)
}

// IncrementActiveVUs increments active VU count
func (m *Metrics) IncrementActiveVUs() {
	m.activeVUs.Add(1)
}

// DecrementActiveVUs decrements active VU count
func (m *Metrics) DecrementActiveVUs() {
	m.activeVUs.Add(-1)
}

// Snapshot captures current metrics for time series
func (m *Metrics) Snapshot() TimePoint {
	now := time.Now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	elapsed := now.Sub(m.lastTimePoint).Seconds()
	if elapsed == 0 {
		elapsed = 1
	}

	total := m.totalRequests.Load()
	prevTotal := int64(0)
	if len(m.timeSeries) > 0 {
		prevTotal = m.timeSeries[len(m.timeSeries)-1].Requests
	}

	return TimePoint{
		Timestamp: now,
		Requests:  total,
		Errors:    m.errorRequests.Load(),
		P50:       quantile(m.histogram, 50),
		P95:       quantile(m.histogram, 95),
		P99:       quantile(m.histogram, 99),
		ActiveVUs: m.activeVUs.Load(),
		RPS:       float64(total-prevTotal) / elapsed,
	}
}

// AddTimePoint adds a time point to the series
func (m *Metrics) AddTimePoint(point TimePoint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.timeSeries = append(m.timeSeries, point)
	m.lastTimePoint = point.Timestamp
}

func quantile(h *hdrhistogram.Histogram, q float64) time.Duration {
	return time.Duration(h.ValueAtQuantile(q)) * time.Microsecond
}

func micros(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}

// Summary is the final result of a run
type Summary struct {
	Duration      time.Duration
	TotalRequests int64
	SuccessCount  int64
	ErrorCount    int64
	TimeoutCount  int64

	RPS         float64
	SuccessRate float64
	ErrorRate   float64

	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	StdDev time.Duration

	ActionBreakdown map[string]*ActionSummary

	// ErrorKinds counts failures by kind, for example "token_not_found"
	ErrorKinds map[string]int64

	TimeSeries []TimePoint
}

// ActionSummary holds the summary of one action
type ActionSummary struct {
	Name       string
	Total      int64
	Success    int64
	Errors     int64
	P50        time.Duration
	P95        time.Duration
	P99        time.Duration
	Mean       time.Duration
	ErrorKinds map[string]int64
}

// ActionNames returns the names of the actions in the breakdown, sorted
func (s *Summary) ActionNames() []string {
	names := make([]string, 0, len(s.ActionBreakdown))
	for name := range s.ActionBreakdown {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedErrorKinds returns error kinds ordered by count, then name
func SortedErrorKinds(kinds map[string]int64) []string {
	names := make([]string, 0, len(kinds))
	for k := range kinds {
		names = append(names, k)
	}
	sort.Slice(names, func(i, j int) bool {
		if kinds[names[i]] != kinds[names[j]] {
			return kinds[names[i]] > kinds[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

func copyKinds(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// GetSummary returns the metrics summary
func (m *Metrics) GetSummary() *Summary {
	m.mu.RLock()
	defer m.mu.RUnlock()

	duration := m.endTime.Sub(m.startTime)
	if m.endTime.IsZero() {
		duration = time.Since(m.startTime)
	}

	total := m.totalRequests.Load()
	success := m.successRequests.Load()
	errors := m.errorRequests.Load()

	summary := &Summary{
		Duration:        duration,
		TotalRequests:   total,
		SuccessCount:    success,
		ErrorCount:      errors,
		TimeoutCount:    m.timeoutRequests.Load(),
		P50:             quantile(m.histogram, 50),
		P95:             quantile(m.histogram, 95),
		P99:             quantile(m.histogram, 99),
		Min:             micros(m.histogram.Min()),
		Max:             micros(m.histogram.Max()),
		Mean:            micros(int64(m.histogram.Mean())),
		StdDev:          micros(int64(m.histogram.StdDev())),
		ErrorKinds:      copyKinds(m.errorKinds),
		TimeSeries:      append([]TimePoint(nil), m.timeSeries...),
		ActionBreakdown: make(map[string]*ActionSummary, len(m.actions)),
	}

	if duration.Seconds() > 0 {
		summary.RPS = float64(total) / duration.Seconds()
	}
	if total > 0 {
		summary.SuccessRate = float64(success) / float64(total)
		summary.ErrorRate = float64(errors) / float64(total)
	}

	for name, am := range m.actions {
		am.mu.Lock()
		summary.ActionBreakdown[name] = &ActionSummary{
			Name:       name,
			Total:      am.Total.Load(),
			Success:    am.Success.Load(),
			Errors:     am.Errors.Load(),
			P50:        quantile(am.Histogram, 50),
			P95:        quantile(am.Histogram, 95),
			P99:        quantile(am.Histogram, 99),
			Mean:       micros(int64(am.Histogram.Mean())),
			ErrorKinds: copyKinds(am.errorKinds),
		}
		am.mu.Unlock()
	}

	return summary
}

// CurrentStats returns current statistics for real-time display
type CurrentStats struct {
	Elapsed   time.Duration
	Total     int64
	Success   int64
	Errors    int64
	RPS       float64
	P50       time.Duration
	P95       time.Duration
	P99       time.Duration
	Max       time.Duration
	ActiveVUs int32
	ErrorRate float64
}

// GetCurrentStats returns current statistics
func (m *Metrics) GetCurrentStats() CurrentStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	elapsed := time.Since(m.startTime)
	total := m.totalRequests.Load()
	errors := m.errorRequests.Load()

	stats := CurrentStats{
		Elapsed:   elapsed,
		Total:     total,
		Success:   m.successRequests.Load(),
		Errors:    errors,
		P50:       quantile(m.histogram, 50),
		P95:       quantile(m.histogram, 95),
		P99:       quantile(m.histogram, 99),
		Max:       micros(m.histogram.Max()),
		ActiveVUs: m.activeVUs.Load(),
	}
	if elapsed.Seconds() > 0 {
		stats.RPS = float64(total) / elapsed.Seconds()
	}
	if total > 0 {
		stats.ErrorRate = float64(errors) / float64(total)
	}
	return stats
}

// EvaluateThresholds evaluates the thresholds against the summary
func (m *Metrics) EvaluateThresholds(t Thresholds) []ThresholdResult {
	summary := m.GetSummary()
	var results []ThresholdResult

	latency := func(name string, limit, actual time.Duration) {
		if limit <= 0 {
			return
		}
		results = append(results, ThresholdResult{
			Name:     name,
			Passed:   actual <= limit,
			Expected: "< " + limit.String(),
			Actual:   actual.String(),
		})
	}
	latency("p50", t.P50, summary.P50)
	latency("p95", t.P95, summary.P95)
	latency("p99", t.P99, summary.P99)
	latency("max latency", t.MaxLatency, summary.Max)

	if t.ErrorRate > 0 {
		results = append(results, ThresholdResult{
			Name:     "error rate",
			Passed:   summary.ErrorRate <= t.ErrorRate,
			Expected: formatPercent(t.ErrorRate),
			Actual:   formatPercent(summary.ErrorRate),
		})
	}

	if t.MinRPS > 0 {
		results = append(results, ThresholdResult{
			Name:     "min RPS",
			Passed:   summary.RPS >= t.MinRPS,
			Expected: "> " + formatFloat(t.MinRPS),
			Actual:   formatFloat(summary.RPS),
		})
	}

	return results
}

func formatPercent(f float64) string {
	return formatFloat(f*100) + "%"
}

func formatFloat(f float64) string {
	if f == float64(int(f)) {
		return strconv.Itoa(int(f))
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
