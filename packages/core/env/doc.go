// Package env handles environment variables for jiraload.
//
// It provides functionality for:
//   - Loading environment files (.env, .env.local, etc.)
//   - Expanding ${VAR} and ${VAR:-default} references in configuration text
package env
