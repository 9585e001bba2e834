// Package builtin provides the random values jiraload puts into request
// bodies: alphanumeric strings, prefixed free text and run identifiers.
//
// Every function is safe for concurrent use by many virtual users.
package builtin
