package scenario

import (
	"errors"
	"fmt"

	"github.com/abdul-hamid-achik/jiraload/packages/jira"
)

// ErrNotLoggedIn is returned when an action runs before Setup succeeded.
var ErrNotLoggedIn = errors.New("session is not logged in")

// StatusError reports a response the server refused.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// ErrorKind extends jira.ErrorKind with transport failures, so rejected
// requests are counted by status code.
func ErrorKind(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return fmt.Sprintf("http_%d", statusErr.StatusCode)
	}
	if errors.Is(err, ErrNotLoggedIn) {
		return "not_logged_in"
	}
	return jira.ErrorKind(err)
}
