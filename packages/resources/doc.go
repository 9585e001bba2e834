// Package resources holds the static template store: a JSON object whose
// top-level keys are action names and whose values are template payloads
// passed through to the action that owns them.
//
// The store is read and validated once, then only read from memory. A
// lookup for an unknown action reports absence rather than inventing a
// default.
package resources
