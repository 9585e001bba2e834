package scenario

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/jiraload/packages/core/config"
	"github.com/abdul-hamid-achik/jiraload/packages/jira"
	"github.com/abdul-hamid-achik/jiraload/packages/stress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRun_RateModeAgainstMock(t *testing.T) {
	server, w := newFakeJira(t)

	cfg := &stress.Config{
		Mode:     stress.RateMode,
		Duration: time.Second,
		Rate:     30,
		MaxVUs:   5,
	}
	reporter := stress.NewReporter(stress.WithWriter(io.Discard), stress.WithNoColor(true), stress.WithNoProgress(true))
	runner := stress.NewRunner(cfg, w,
		stress.WithReporter(reporter),
		stress.WithMetrics(stress.NewMetrics(stress.WithErrorClassifier(ErrorKind))),
		stress.WithTarget(w.BaseURL()),
	)
	runner.AddActions(config.DefaultActionWeights())

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	summary := result.Summary
	require.Greater(t, summary.TotalRequests, int64(10))

	// only iterations cut off by the end of the run may fail
	for kind := range summary.ErrorKinds {
		assert.Equal(t, "timeout", kind)
	}
	assert.Greater(t, server.Stats().Logins.Load(), int64(0))
	assert.NotNil(t, summary.ActionBreakdown[jira.Login.String()])
}

func TestLoadRun_VUMode(t *testing.T) {
	server, w := newFakeJira(t)

	cfg := &stress.Config{
		Mode:      stress.VUMode,
		Duration:  500 * time.Millisecond,
		VUs:       2,
		MaxVUs:    2,
		ThinkTime: 10 * time.Millisecond,
	}
	reporter := stress.NewReporter(stress.WithWriter(io.Discard), stress.WithNoColor(true), stress.WithNoProgress(true))
	runner := stress.NewRunner(cfg, w,
		stress.WithReporter(reporter),
		stress.WithMetrics(stress.NewMetrics(stress.WithErrorClassifier(ErrorKind))),
	)
	runner.AddAction(jira.ViewIssue.String(), 1)

	result, err := runner.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(2), server.Stats().Logins.Load())
	view := result.Summary.ActionBreakdown[jira.ViewIssue.String()]
	require.NotNil(t, view)
	assert.Greater(t, view.Success, int64(0))
}
