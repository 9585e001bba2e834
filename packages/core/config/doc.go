// Package config handles configuration loading and management for jiraload.
//
// It provides functionality for:
//   - Loading configuration from jiraload.yaml or jiraload.yml files
//   - Expanding ${VAR} references from the environment
//   - Default configuration values and action weights
package config
