// Package scenario plays the browser side of a Jira user.
//
// A Workload owns the target base URL, the test dataset and the action
// catalog. Every virtual user gets its own Session with a private cookie
// jar; the session logs in once and then runs actions, each a short
// request pipeline in which values extracted from one response (tokens,
// ids, form fields) feed the next request.
package scenario
