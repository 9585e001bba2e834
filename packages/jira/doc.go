// Package jira holds the correlation rules for simulating browser users
// against a Jira server.
//
// Each simulated action (login, create issue, search, edit, comment, ...)
// needs values that only exist in the body of an earlier response: CSRF
// tokens, form tokens, project and issue ids, the list of form fields to
// keep. This package declares, per action, the patterns that pull those
// values out, the header profile the browser would send, and the template
// payload from the resource store. PrepareIssueBody and PrepareJQLBody turn
// extracted values into the exact form bodies of the follow-up requests.
//
// Extraction failures surface as the sentinel errors in errors.go so the
// load driver can count them per kind.
package jira
