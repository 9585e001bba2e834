package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDotEnv(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected map[string]string
	}{
		{
			name:     "simple key-value",
			content:  "JIRA_PASSWORD=secret123",
			expected: map[string]string{"JIRA_PASSWORD": "secret123"},
		},
		{
			name:    "multiple keys",
			content: "JIRA_URL=http://jira:8080\nJIRA_USER=admin",
			expected: map[string]string{
				"JIRA_URL":  "http://jira:8080",
				"JIRA_USER": "admin",
			},
		},
		{
			name:     "export prefix",
			content:  "export JIRA_USER=admin",
			expected: map[string]string{"JIRA_USER": "admin"},
		},
		{
			name:     "double quoted value",
			content:  `JIRA_PASSWORD="secret with spaces"`,
			expected: map[string]string{"JIRA_PASSWORD": "secret with spaces"},
		},
		{
			name:     "single quoted value",
			content:  `JIRA_PASSWORD='secret with spaces'`,
			expected: map[string]string{"JIRA_PASSWORD": "secret with spaces"},
		},
		{
			name:     "comments and blank lines are skipped",
			content:  "# comment\n\nJIRA_USER=admin\n\n",
			expected: map[string]string{"JIRA_USER": "admin"},
		},
		{
			name:     "value with equals sign",
			content:  "DATASET=sqlite://data.db?cache=shared",
			expected: map[string]string{"DATASET": "sqlite://data.db?cache=shared"},
		},
		{
			name:     "lines without equals are ignored",
			content:  "garbage\nJIRA_USER=admin",
			expected: map[string]string{"JIRA_USER": "admin"},
		},
		{
			name:     "empty file",
			content:  "",
			expected: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envFile := filepath.Join(t.TempDir(), ".env")
			require.NoError(t, os.WriteFile(envFile, []byte(tt.content), 0644))

			result, err := LoadDotEnv(envFile)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestLoadDotEnvFileNotFound(t *testing.T) {
	_, err := LoadDotEnv("/nonexistent/path/.env")
	assert.Error(t, err)
}

func TestLoadAndExportDotEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("JIRALOAD_TEST_NEW=from-file\nJIRALOAD_TEST_SET=from-file"), 0644))

	t.Setenv("JIRALOAD_TEST_SET", "from-env")
	t.Setenv("JIRALOAD_TEST_NEW", "")
	require.NoError(t, os.Unsetenv("JIRALOAD_TEST_NEW"))

	vars, err := LoadAndExportDotEnv(envFile)
	require.NoError(t, err)
	assert.Len(t, vars, 2)

	assert.Equal(t, "from-file", os.Getenv("JIRALOAD_TEST_NEW"))
	assert.Equal(t, "from-env", os.Getenv("JIRALOAD_TEST_SET"))
}
