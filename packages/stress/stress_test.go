package stress

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errLoginFailed = errors.New("login failed")
	errBroken      = errors.New("action broken")
)

// fakeWorkload counts sessions and actions without any network traffic
type fakeWorkload struct {
	failSetup bool
	failing   map[string]error
	delay     time.Duration

	sessions atomic.Int64
	setups   atomic.Int64

	mu   sync.Mutex
	runs map[string]int
	busy map[*fakeSession]bool
	// overlap is set when one session runs two actions at once
	overlap atomic.Bool
}

func (w *fakeWorkload) NewSession(ctx context.Context) (Session, error) {
	w.sessions.Add(1)
	return &fakeSession{workload: w}, nil
}

func (w *fakeWorkload) SetupAction() string {
	return "login"
}

func (w *fakeWorkload) count(action string) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs[action]
}

type fakeSession struct {
	workload *fakeWorkload
}

func (s *fakeSession) Setup(ctx context.Context) error {
	s.workload.setups.Add(1)
	if s.workload.failSetup {
		return errLoginFailed
	}
	return nil
}

func (s *fakeSession) Run(ctx context.Context, action string) error {
	w := s.workload

	w.mu.Lock()
	if w.runs == nil {
		w.runs = make(map[string]int)
		w.busy = make(map[*fakeSession]bool)
	}
	if w.busy[s] {
		w.overlap.Store(true)
	}
	w.busy[s] = true
	w.runs[action]++
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.busy[s] = false
		w.mu.Unlock()
	}()

	if w.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(w.delay):
		}
	}
	return w.failing[action]
}

func quietReporter() *Reporter {
	return NewReporter(WithWriter(io.Discard), WithNoColor(true), WithNoProgress(true))
}

func TestRunnerRateMode(t *testing.T) {
	w := &fakeWorkload{}
	cfg := &Config{
		Mode:     RateMode,
		Duration: time.Second,
		Rate:     50,
		MaxVUs:   10,
	}

	runner := NewRunner(cfg, w, WithReporter(quietReporter()))
	runner.AddAction("view_issue", 1)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	summary := result.Summary
	view := summary.ActionBreakdown["view_issue"]
	require.NotNil(t, view)
	assert.InDelta(t, 50, view.Total, 20)
	assert.Equal(t, view.Total, view.Success)
	assert.Zero(t, summary.ErrorCount)
	assert.True(t, result.Passed)

	login := summary.ActionBreakdown["login"]
	require.NotNil(t, login)
	assert.Equal(t, w.sessions.Load(), login.Total)
	assert.LessOrEqual(t, w.sessions.Load(), int64(cfg.MaxVUs))
	assert.False(t, w.overlap.Load(), "a session ran two actions at once")
}

func TestRunnerErrorKinds(t *testing.T) {
	w := &fakeWorkload{failing: map[string]error{"create_issue": errBroken}}
	cfg := &Config{
		Mode:     RateMode,
		Duration: 500 * time.Millisecond,
		Rate:     40,
		MaxVUs:   5,
	}

	classify := func(err error) string {
		if errors.Is(err, errBroken) {
			return "broken"
		}
		return "error"
	}

	runner := NewRunner(cfg, w,
		WithReporter(quietReporter()),
		WithMetrics(NewMetrics(WithErrorClassifier(classify))),
	)
	runner.AddActions(map[string]int{"create_issue": 1, "view_issue": 1})

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	summary := result.Summary
	create := summary.ActionBreakdown["create_issue"]
	require.NotNil(t, create)
	assert.Equal(t, create.Total, create.Errors)
	assert.Greater(t, create.ErrorKinds["broken"], int64(0))
	// an action cut off by the end of the run is counted as a timeout
	assert.Equal(t, create.Errors, create.ErrorKinds["broken"]+create.ErrorKinds["timeout"])
	assert.Equal(t, create.ErrorKinds["broken"], summary.ErrorKinds["broken"])

	view := summary.ActionBreakdown["view_issue"]
	require.NotNil(t, view)
	assert.Zero(t, view.Errors)
}

func TestRunnerThresholds(t *testing.T) {
	w := &fakeWorkload{failing: map[string]error{"view_issue": errBroken}}
	cfg := &Config{
		Mode:     RateMode,
		Duration: 500 * time.Millisecond,
		Rate:     20,
		MaxVUs:   5,
		Thresholds: Thresholds{
			ErrorRate: 0.01,
		},
	}

	runner := NewRunner(cfg, w, WithReporter(quietReporter()))
	runner.AddAction("view_issue", 1)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Thresholds, 1)
	assert.False(t, result.Thresholds[0].Passed)
	assert.True(t, result.HasThresholdFailures())
	assert.False(t, result.Passed)
}

func TestRunnerVUMode(t *testing.T) {
	w := &fakeWorkload{}
	cfg := &Config{
		Mode:      VUMode,
		Duration:  time.Second,
		VUs:       3,
		MaxVUs:    3,
		ThinkTime: 50 * time.Millisecond,
	}

	runner := NewRunner(cfg, w, WithReporter(quietReporter()))
	runner.AddAction("browse_projects", 1)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	// every VU logs in exactly once
	assert.Equal(t, int64(3), w.sessions.Load())
	assert.Equal(t, int64(3), result.Summary.ActionBreakdown["login"].Total)
	assert.Greater(t, w.count("browse_projects"), 10)
	assert.False(t, w.overlap.Load(), "a session ran two actions at once")
}

func TestRunnerVUModeRampUp(t *testing.T) {
	w := &fakeWorkload{}
	cfg := &Config{
		Mode:      VUMode,
		Duration:  time.Second,
		VUs:       4,
		MaxVUs:    4,
		ThinkTime: 20 * time.Millisecond,
		RampUp:    500 * time.Millisecond,
	}

	runner := NewRunner(cfg, w, WithReporter(quietReporter()))
	runner.AddAction("view_issue", 1)

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), w.sessions.Load())
}

func TestRunnerVUModeLoginRetry(t *testing.T) {
	w := &fakeWorkload{failSetup: true}
	cfg := &Config{
		Mode:     VUMode,
		Duration: 500 * time.Millisecond,
		VUs:      1,
		MaxVUs:   1,
	}

	runner := NewRunner(cfg, w, WithReporter(quietReporter()))
	runner.AddAction("view_issue", 1)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	login := result.Summary.ActionBreakdown["login"]
	require.NotNil(t, login)
	assert.GreaterOrEqual(t, login.Errors, int64(2))
	assert.Zero(t, w.count("view_issue"))
}

func TestRunnerWeightedActions(t *testing.T) {
	w := &fakeWorkload{}
	cfg := &Config{
		Mode:     RateMode,
		Duration: time.Second,
		Rate:     200,
		MaxVUs:   20,
	}

	runner := NewRunner(cfg, w, WithReporter(quietReporter()))
	runner.AddActions(map[string]int{
		"view_issue":  80,
		"search_jql":  20,
		"add_comment": 0,
	})

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	views := w.count("view_issue")
	searches := w.count("search_jql")
	require.Greater(t, views+searches, 50)
	assert.Greater(t, views, searches)
	assert.Zero(t, w.count("add_comment"))
}

func TestRunnerGracefulShutdown(t *testing.T) {
	w := &fakeWorkload{delay: 20 * time.Millisecond}
	cfg := &Config{
		Mode:     RateMode,
		Duration: 10 * time.Second,
		Rate:     20,
		MaxVUs:   5,
	}

	runner := NewRunner(cfg, w, WithReporter(quietReporter()))
	runner.AddAction("view_issue", 1)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(300 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	result, err := runner.Run(ctx)
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Greater(t, result.Summary.TotalRequests, int64(0))
}

func TestRunnerRejectsEmptyMix(t *testing.T) {
	cfg := &Config{Mode: RateMode, Duration: time.Second, Rate: 10, MaxVUs: 1}

	runner := NewRunner(cfg, &fakeWorkload{}, WithReporter(quietReporter()))
	runner.AddAction("view_issue", 0)

	_, err := runner.Run(context.Background())
	assert.Error(t, err)

	_, err = NewRunner(cfg, nil, WithReporter(quietReporter())).Run(context.Background())
	assert.Error(t, err)
}

func TestRunnerInvalidConfig(t *testing.T) {
	cfg := &Config{Mode: RateMode, Duration: 0, Rate: 10}

	runner := NewRunner(cfg, &fakeWorkload{}, WithReporter(quietReporter()))
	runner.AddAction("view_issue", 1)

	_, err := runner.Run(context.Background())
	assert.ErrorContains(t, err, "invalid config")
}

func TestRunnerReportsSummary(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{Mode: RateMode, Duration: 300 * time.Millisecond, Rate: 20, MaxVUs: 2}

	reporter := NewReporter(WithWriter(&buf), WithNoColor(true), WithNoProgress(true))
	runner := NewRunner(cfg, &fakeWorkload{}, WithReporter(reporter), WithVersion("1.2.3"), WithTarget("http://jira.test"))
	runner.AddAction("view_issue", 1)

	_, err := runner.Run(context.Background())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "jiraload 1.2.3")
	assert.Contains(t, out, "http://jira.test")
	assert.Contains(t, out, "LOAD TEST SUMMARY")
	assert.Contains(t, out, "view_issue")
}
