package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/jiraload/packages/stress"
)

type recordingNotifier struct {
	name  string
	err   error
	calls int
}

func (r *recordingNotifier) Notify(ctx context.Context, summary *RunSummary) error {
	r.calls++
	return r.err
}

func (r *recordingNotifier) Name() string { return r.name }

func failingResult() *stress.Result {
	m := stress.NewMetrics(stress.WithErrorClassifier(func(err error) string { return "token_not_found" }))
	m.Start()
	m.Record("view_issue", 100*time.Millisecond, nil)
	m.Record("create_issue", 200*time.Millisecond, errors.New("missing"))
	m.Record("create_issue", 200*time.Millisecond, errors.New("missing"))
	m.RecordTimeout("view_issue")
	m.Stop()

	return &stress.Result{
		Summary: m.GetSummary(),
		Thresholds: []stress.ThresholdResult{
			{Name: "error rate", Passed: false, Expected: "1.00%", Actual: "75.00%"},
			{Name: "p95 latency", Passed: true, Expected: "2s", Actual: "200ms"},
		},
	}
}

func TestSummarize(t *testing.T) {
	rs := Summarize("run-1", "http://jira.test", failingResult())

	assert.False(t, rs.Passed)
	assert.Equal(t, int64(4), rs.Actions)
	assert.Equal(t, int64(3), rs.Errors)
	assert.Equal(t, []ErrorCount{{Kind: "token_not_found", Count: 2}, {Kind: "timeout", Count: 1}}, rs.TopErrors)
	assert.Equal(t, []string{"error rate: 75.00% (expected 1.00%)"}, rs.FailedThresholds)
	assert.Equal(t, "Load run failed 1 threshold(s)", rs.title())
}

func TestParseNotifyOn(t *testing.T) {
	on, err := ParseNotifyOn("")
	require.NoError(t, err)
	assert.Equal(t, NotifyFailure, on)

	on, err = ParseNotifyOn("always")
	require.NoError(t, err)
	assert.Equal(t, NotifyAlways, on)

	_, err = ParseNotifyOn("recovery")
	assert.Error(t, err)
}

func TestManagerPolicy(t *testing.T) {
	passed := &RunSummary{Passed: true}
	failed := &RunSummary{Passed: false}

	tests := []struct {
		on         NotifyOn
		wantPassed int
		wantFailed int
	}{
		{NotifyAlways, 1, 1},
		{NotifyFailure, 0, 1},
		{NotifySuccess, 1, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.on), func(t *testing.T) {
			n := &recordingNotifier{name: "rec"}
			m := NewManager(tt.on, n)

			require.NoError(t, m.Notify(context.Background(), passed))
			assert.Equal(t, tt.wantPassed, n.calls)

			require.NoError(t, m.Notify(context.Background(), failed))
			assert.Equal(t, tt.wantPassed+tt.wantFailed, n.calls)
		})
	}
}

func TestManagerJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	ok := &recordingNotifier{name: "ok"}
	bad := &recordingNotifier{name: "bad", err: boom}

	m := NewManager(NotifyAlways, ok)
	m.AddNotifier(bad)
	assert.Equal(t, 2, m.Len())

	err := m.Notify(context.Background(), &RunSummary{})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "bad: boom")
	assert.Equal(t, 1, ok.calls)
}

type webhook struct {
	mu     sync.Mutex
	bodies []map[string]any
	status int
}

func (w *webhook) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(data, &body)

	w.mu.Lock()
	w.bodies = append(w.bodies, body)
	w.mu.Unlock()

	if w.status != 0 {
		rw.WriteHeader(w.status)
		return
	}
	rw.WriteHeader(http.StatusOK)
}

func TestSlackNotifier(t *testing.T) {
	hook := &webhook{}
	ts := httptest.NewServer(hook)
	defer ts.Close()

	n := NewSlackNotifier(ts.URL, WithSlackChannel("#load"), WithSlackHTTPClient(ts.Client()))
	require.NoError(t, n.Notify(context.Background(), Summarize("run-1", "http://jira.test", failingResult())))

	require.Len(t, hook.bodies, 1)
	body := hook.bodies[0]
	assert.Equal(t, "#load", body["channel"])
	assert.Equal(t, "jiraload", body["username"])

	attachments := body["attachments"].([]any)
	require.Len(t, attachments, 1)
	att := attachments[0].(map[string]any)
	assert.Equal(t, "danger", att["color"])
	assert.Contains(t, att["text"], "token_not_found")
	assert.Contains(t, att["text"], "error rate")
	assert.Equal(t, "jiraload run run-1", att["footer"])
}

func TestTeamsNotifier(t *testing.T) {
	hook := &webhook{}
	ts := httptest.NewServer(hook)
	defer ts.Close()

	n := NewTeamsNotifier(ts.URL, WithTeamsHTTPClient(ts.Client()))
	require.NoError(t, n.Notify(context.Background(), &RunSummary{Passed: true, RunID: "run-2"}))

	require.Len(t, hook.bodies, 1)
	assert.Equal(t, "message", hook.bodies[0]["type"])
}

func TestWebhookErrorStatus(t *testing.T) {
	hook := &webhook{status: http.StatusForbidden}
	ts := httptest.NewServer(hook)
	defer ts.Close()

	err := NewSlackNotifier(ts.URL).Notify(context.Background(), &RunSummary{Passed: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}
