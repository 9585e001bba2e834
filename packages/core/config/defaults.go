package config

// DefaultActionWeights is the share of iterations each action gets when the
// configuration does not say otherwise. Login runs once per session and is
// not weighted.
func DefaultActionWeights() map[string]int {
	return map[string]int{
		"view_issue":           34,
		"search_jql":           11,
		"view_dashboard":       10,
		"view_kanban_board":    10,
		"browse_projects":      9,
		"edit_issue":           5,
		"create_issue":         4,
		"view_project_summary": 4,
		"add_comment":          2,
		"browse_boards":        2,
	}
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     "http://localhost:8080",
		Dataset:     "sqlite://jiraload.db",
		Timeout:     30000, // 30 seconds
		ValidateSSL: BoolPtr(true),
		Stress: StressConfig{
			Mode:      "vu",
			Duration:  "5m",
			VUs:       10,
			MaxVUs:    50,
			ThinkTime: "1s",
		},
		Actions: DefaultActionWeights(),
	}
}
