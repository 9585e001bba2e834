package stress

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Session is one simulated user. Its actions are never run concurrently.
type Session interface {
	// Setup runs once before the first action, usually a login.
	Setup(ctx context.Context) error
	// Run executes one named action.
	Run(ctx context.Context, action string) error
}

// Workload creates sessions for the runner.
type Workload interface {
	NewSession(ctx context.Context) (Session, error)
	// SetupAction is the name Session.Setup is recorded under.
	SetupAction() string
}

// Runner executes a load run
type Runner struct {
	config    *Config
	workload  Workload
	scheduler *Scheduler
	metrics   *Metrics
	reporter  *Reporter

	version string
	target  string
}

// RunnerOption configures the runner
type RunnerOption func(*Runner)

// WithReporter sets the reporter
func WithReporter(reporter *Reporter) RunnerOption {
	return func(r *Runner) {
		r.reporter = reporter
	}
}

// WithMetrics replaces the default metrics collector, for example to
// classify errors
func WithMetrics(m *Metrics) RunnerOption {
	return func(r *Runner) {
		r.metrics = m
	}
}

// WithTarget names the system under test in the header
func WithTarget(target string) RunnerOption {
	return func(r *Runner) {
		r.target = target
	}
}

// WithVersion sets the version shown in the header
func WithVersion(version string) RunnerOption {
	return func(r *Runner) {
		r.version = version
	}
}

// NewRunner creates a new runner for workload
func NewRunner(config *Config, workload Workload, opts ...RunnerOption) *Runner {
	r := &Runner{
		config:    config,
		workload:  workload,
		scheduler: NewScheduler(config),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.metrics == nil {
		r.metrics = NewMetrics()
	}
	if r.reporter == nil {
		r.reporter = NewReporter()
	}

	return r
}

// AddAction adds an action to the mix with the given weight
func (r *Runner) AddAction(name string, weight int) {
	r.scheduler.AddAction(name, weight)
}

// AddActions adds every entry of weights to the mix
func (r *Runner) AddActions(weights map[string]int) {
	for name, weight := range weights {
		r.scheduler.AddAction(name, weight)
	}
}

// Metrics returns the collector used by the runner
func (r *Runner) Metrics() *Metrics {
	return r.metrics
}

// Run executes the load run until the configured duration elapses or ctx
// is cancelled
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if err := r.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if r.workload == nil {
		return nil, errors.New("no workload configured")
	}
	if r.scheduler.ActionCount() == 0 {
		return nil, errors.New("no actions with a positive weight")
	}

	r.reporter.Header(r.version, r.target, r.config, r.scheduler.Weights())

	r.metrics.Start()

	ctx, cancel := context.WithTimeout(ctx, r.config.Duration)
	defer cancel()

	progressDone := make(chan struct{})
	go r.progressLoop(progressDone)

	if r.config.Mode == VUMode {
		r.runVUMode(ctx)
	} else {
		r.runRateMode(ctx)
	}

	r.metrics.Stop()
	close(progressDone)
	r.reporter.ClearProgress()

	summary := r.metrics.GetSummary()
	var thresholdResults []ThresholdResult
	if r.config.Thresholds.HasThresholds() {
		thresholdResults = r.metrics.EvaluateThresholds(r.config.Thresholds)
	}

	r.reporter.Summary(summary, thresholdResults)

	result := &Result{
		Summary:    summary,
		Thresholds: thresholdResults,
	}
	result.Passed = !result.HasThresholdFailures()
	return result, nil
}

// runRateMode starts iterations at the configured rate. Each iteration
// borrows an idle session from the pool so a session never runs two
// actions at once.
func (r *Runner) runRateMode(ctx context.Context) {
	var wg sync.WaitGroup
	defer wg.Wait()

	pool := NewSessionPool(r.workload, r.execute, r.config.MaxVUs)
	startTime := time.Now()

	var rampUpTicker *time.Ticker
	if r.config.RampUp > 0 {
		rampUpTicker = time.NewTicker(100 * time.Millisecond)
		defer rampUpTicker.Stop()
	}

	for {
		if ctx.Err() != nil {
			return
		}

		if rampUpTicker != nil {
			select {
			case <-rampUpTicker.C:
				r.scheduler.UpdateRate(r.scheduler.CurrentRate(time.Since(startTime)))
			default:
			}
		}

		if err := r.scheduler.Wait(ctx); err != nil {
			return
		}

		action, ok := r.scheduler.SelectAction()
		if !ok {
			return
		}

		if err := r.scheduler.Acquire(ctx); err != nil {
			return
		}

		wg.Add(1)
		go func(action string) {
			defer wg.Done()
			defer r.scheduler.Release()

			r.metrics.IncrementActiveVUs()
			defer r.metrics.DecrementActiveVUs()

			sess, err := pool.Get(ctx)
			if err != nil {
				return
			}
			_ = r.execute(ctx, action, func(ctx context.Context) error {
				return sess.Run(ctx, action)
			})
			if ctx.Err() == nil {
				pool.Put(sess)
			}
		}(action)
	}
}

// runVUMode runs the configured number of virtual users until ctx ends
func (r *Runner) runVUMode(ctx context.Context) {
	pool := NewVUPool(r.scheduler, r.config, r.metrics, r.workload, r.execute)
	pool.Start(ctx)

	if r.config.RampUp > 0 {
		rampUpTicker := time.NewTicker(100 * time.Millisecond)
		startTime := time.Now()

		go func() {
			defer rampUpTicker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-rampUpTicker.C:
					target := r.scheduler.CurrentVUs(time.Since(startTime))
					if target < 1 {
						target = 1
					}
					pool.Scale(target)
				}
			}
		}()
	}

	<-ctx.Done()

	pool.Stop()
	pool.Wait()
}

// execute runs fn as the named action and records the outcome. An action
// interrupted by the end of the run counts as a timeout.
func (r *Runner) execute(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	if err != nil && ctx.Err() != nil {
		r.metrics.RecordTimeout(name)
		return err
	}
	r.metrics.Record(name, duration, err)
	return err
}

// progressLoop updates the progress display
func (r *Runner) progressLoop(done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			r.reporter.Progress(r.metrics.GetCurrentStats(), r.config.Duration)
			r.metrics.AddTimePoint(r.metrics.Snapshot())
		}
	}
}

// Result holds the final result of a run
type Result struct {
	Summary    *Summary
	Thresholds []ThresholdResult
	Passed     bool
}

// HasThresholdFailures returns true if any thresholds failed
func (r *Result) HasThresholdFailures() bool {
	for _, tr := range r.Thresholds {
		if !tr.Passed {
			return true
		}
	}
	return false
}
