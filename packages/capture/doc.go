// Package capture extracts correlation values from raw HTTP response bodies.
//
// Patterns are regular expressions typed by the number of groups they
// capture:
//   - Marker: no groups, only reports presence
//   - Single: one group, such as a CSRF token
//   - Pair: two groups, such as a field id and its required flag
//   - Groups: three or more groups
//
// Each constructor checks the declared arity against the compiled
// expression, so a pattern whose groups drift from its call sites fails at
// package initialization instead of mid-run.
package capture
