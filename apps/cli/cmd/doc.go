// Package cmd implements the jiraload CLI commands using Cobra.
//
// Available commands:
//   - run: Drive a load run against a Jira instance
//   - validate: Check a resource store against the action catalog
//   - extract: Run one extraction pattern against a saved response
//   - mock: Serve a fake Jira for local runs
//   - init: Write a starter configuration file
//   - version: Show jiraload version information
package cmd
