package env

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpander_Expand(t *testing.T) {
	vars := map[string]string{
		"JIRA_URL":  "http://jira:8080",
		"JIRA_USER": "admin",
		"EMPTY":     "",
	}
	lookup := func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no references", "baseURL: http://localhost", "baseURL: http://localhost"},
		{"single", "baseURL: ${JIRA_URL}", "baseURL: http://jira:8080"},
		{"several", "${JIRA_USER}@${JIRA_URL}", "admin@http://jira:8080"},
		{"padded name", "${ JIRA_USER }", "admin"},
		{"default used", "${MISSING:-fallback}", "fallback"},
		{"default for empty", "${EMPTY:-fallback}", "fallback"},
		{"default ignored", "${JIRA_USER:-other}", "admin"},
		{"unresolved kept", "${MISSING}", "${MISSING}"},
		{"braces required", "$JIRA_USER", "$JIRA_USER"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExpander().WithLookup(lookup)
			assert.Equal(t, tt.want, e.Expand(tt.input))
		})
	}
}

func TestExpander_Warnings(t *testing.T) {
	var warnings []string
	e := NewExpander().WithLookup(func(string) (string, bool) { return "", false })
	e.SetWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	e.Expand("${A} ${B:-b} ${C}")
	assert.Equal(t, []string{
		"unresolved environment variable: ${A}",
		"unresolved environment variable: ${C}",
	}, warnings)
	assert.Equal(t, []string{"A", "C"}, e.Unresolved("${A} ${B:-b} ${C}"))
}

func TestExpander_WithVariables(t *testing.T) {
	t.Setenv("JIRALOAD_EXPAND_ENV", "from-env")

	e := NewExpander().WithVariables(map[string]string{"LOCAL": "from-map"})
	assert.Equal(t, "from-map from-env", e.Expand("${LOCAL} ${JIRALOAD_EXPAND_ENV}"))
}
