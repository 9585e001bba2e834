// Package notify posts the outcome of a load run to chat webhooks.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/jiraload/packages/stress"
)

// NotifyOn specifies when to send notifications
type NotifyOn string

const (
	// NotifyAlways sends notifications for every run
	NotifyAlways NotifyOn = "always"
	// NotifyFailure sends notifications only when a threshold fails
	NotifyFailure NotifyOn = "failure"
	// NotifySuccess sends notifications only when every threshold holds
	NotifySuccess NotifyOn = "success"
)

// ParseNotifyOn accepts always, failure and success
func ParseNotifyOn(s string) (NotifyOn, error) {
	switch NotifyOn(s) {
	case NotifyAlways, NotifyFailure, NotifySuccess:
		return NotifyOn(s), nil
	case "":
		return NotifyFailure, nil
	}
	return "", fmt.Errorf("unknown notify policy %q", s)
}

// RunSummary is what a notification says about a run
type RunSummary struct {
	RunID     string
	Target    string
	Passed    bool
	Duration  time.Duration
	Actions   int64
	Errors    int64
	ErrorRate float64
	P95       time.Duration
	RPS       float64
	// TopErrors lists the most frequent error kinds, most frequent first
	TopErrors []ErrorCount
	// FailedThresholds holds "name: actual (expected)" lines
	FailedThresholds []string
}

// ErrorCount is one error kind and how often it occurred
type ErrorCount struct {
	Kind  string
	Count int64
}

const maxTopErrors = 5

// Summarize builds a RunSummary from the result of a run
func Summarize(runID, target string, result *stress.Result) *RunSummary {
	s := result.Summary
	rs := &RunSummary{
		RunID:     runID,
		Target:    target,
		Passed:    !result.HasThresholdFailures(),
		Duration:  s.Duration,
		Actions:   s.TotalRequests,
		Errors:    s.ErrorCount,
		ErrorRate: s.ErrorRate,
		P95:       s.P95,
		RPS:       s.RPS,
	}

	for i, kind := range stress.SortedErrorKinds(s.ErrorKinds) {
		if i == maxTopErrors {
			break
		}
		rs.TopErrors = append(rs.TopErrors, ErrorCount{Kind: kind, Count: s.ErrorKinds[kind]})
	}
	for _, t := range result.Thresholds {
		if !t.Passed {
			rs.FailedThresholds = append(rs.FailedThresholds, fmt.Sprintf("%s: %s (expected %s)", t.Name, t.Actual, t.Expected))
		}
	}
	return rs
}

func (rs *RunSummary) title() string {
	if rs.Passed {
		return "Load run passed"
	}
	return fmt.Sprintf("Load run failed %d threshold(s)", len(rs.FailedThresholds))
}

// Notifier is the interface for notification services
type Notifier interface {
	// Notify sends a notification about a run
	Notify(ctx context.Context, summary *RunSummary) error

	// Name returns the name of the notifier
	Name() string
}

// Manager sends a summary to every notifier its policy allows
type Manager struct {
	notifiers []Notifier
	notifyOn  NotifyOn
}

// NewManager creates a new notification manager
func NewManager(notifyOn NotifyOn, notifiers ...Notifier) *Manager {
	return &Manager{
		notifiers: notifiers,
		notifyOn:  notifyOn,
	}
}

// AddNotifier adds a notifier to the manager
func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// Len returns the number of notifiers
func (m *Manager) Len() int {
	return len(m.notifiers)
}

func (m *Manager) shouldNotify(summary *RunSummary) bool {
	switch m.notifyOn {
	case NotifyAlways:
		return true
	case NotifySuccess:
		return summary.Passed
	default:
		return !summary.Passed
	}
}

// Notify sends summary to every notifier and joins their errors
func (m *Manager) Notify(ctx context.Context, summary *RunSummary) error {
	if !m.shouldNotify(summary) {
		return nil
	}

	var errs []error
	for _, n := range m.notifiers {
		if err := n.Notify(ctx, summary); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}
