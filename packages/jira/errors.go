package jira

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/jiraload/packages/capture"
)

// Failures that end the current iteration of a virtual user. None of them
// is retried here; the driver records the failure and moves on.
var (
	ErrTokenNotFound   = errors.New("atlassian token not found")
	ErrIssueNotCreated = errors.New("issue was not created")
	ErrProjectNotFound = errors.New("project not found")
	ErrIssueNotFound   = errors.New("issue not found")

	// ErrInvalidInput marks a body assembly call with missing or
	// malformed inputs. It is a programming error, not a server condition.
	ErrInvalidInput = errors.New("invalid input shape")
)

// ExtractionError records which pattern found nothing in a response.
type ExtractionError struct {
	Pattern string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%v (pattern %s)", e.Err, e.Pattern)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

func extractionError(m capture.Matcher, sentinel error) error {
	return &ExtractionError{Pattern: m.Name(), Err: sentinel}
}

// RequireSingle returns the group captured by p or an ExtractionError
// wrapping sentinel when the body does not match. An empty capture counts
// as no match: every required value is echoed back to the server.
func RequireSingle(body string, p *capture.Single, sentinel error) (string, error) {
	v, ok := p.Find(body)
	if !ok || v == "" {
		return "", extractionError(p, sentinel)
	}
	return v, nil
}

// RequirePair is RequireSingle for two-group patterns.
func RequirePair(body string, p *capture.Pair, sentinel error) (string, string, error) {
	a, b, ok := p.Find(body)
	if !ok {
		return "", "", extractionError(p, sentinel)
	}
	return a, b, nil
}

// RequireGroups is RequireSingle for patterns with three or more groups.
func RequireGroups(body string, p *capture.Groups, sentinel error) ([]string, error) {
	groups, ok := p.Find(body)
	if !ok {
		return nil, extractionError(p, sentinel)
	}
	return groups, nil
}

// RequireMarker fails with sentinel when m does not occur in body.
func RequireMarker(body string, m *capture.Marker, sentinel error) error {
	if !m.In(body) {
		return extractionError(m, sentinel)
	}
	return nil
}

// ErrorKind names the failure class of err for reporting. Errors outside
// this package are reported as "error".
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTokenNotFound):
		return "token_not_found"
	case errors.Is(err, ErrIssueNotCreated):
		return "issue_not_created"
	case errors.Is(err, ErrProjectNotFound):
		return "project_not_found"
	case errors.Is(err, ErrIssueNotFound):
		return "issue_not_found"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
