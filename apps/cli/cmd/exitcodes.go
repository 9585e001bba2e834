package cmd

// Exit codes for the jiraload CLI
const (
	// ExitSuccess indicates the run completed and every threshold passed
	ExitSuccess = 0

	// ExitTestFailure indicates a failed threshold or a failed command
	ExitTestFailure = 1

	// ExitParseError indicates a resource store or response file that
	// cannot be parsed
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitNetworkError indicates a network/connection error
	ExitNetworkError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

// exitError carries the process exit code for an error
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}
