// Package http provides the HTTP transport used by jiraload virtual users.
//
// It wraps the standard library's http package with additional features:
//   - Configurable timeouts and redirect handling
//   - Per-session cookie jars so each virtual user keeps its own login
//   - Ordered form bodies that keep repeated keys in insertion order
//   - Response capture with body and timing
package http
