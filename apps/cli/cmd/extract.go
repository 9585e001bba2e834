package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abdul-hamid-achik/jiraload/packages/capture"
	"github.com/abdul-hamid-achik/jiraload/packages/jira"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	extractActionFlag  string
	extractPatternFlag string
	extractAllFlag     bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <response-file|->",
	Short: "Run extraction patterns against a saved response",
	Long: `Run the extraction patterns of one action against a saved page or JSON
response and print what they capture. Useful when a Jira upgrade changes
the markup and a run starts reporting token_not_found.

Examples:
  jiraload extract --action login_and_view_dashboard dashboard.html
  jiraload extract --action view_issue --pattern issue_id issue.html
  curl -s $JIRA/issues/?jql=... | jiraload extract --action search_jql --all -`,
	Args: cobra.ExactArgs(1),
	RunE: extractCommand,
}

func init() {
	extractCmd.Flags().StringVarP(&extractActionFlag, "action", "a", "", "Action whose patterns to run")
	extractCmd.Flags().StringVarP(&extractPatternFlag, "pattern", "p", "", "Run only this pattern")
	extractCmd.Flags().BoolVar(&extractAllFlag, "all", false, "Print every match instead of the first")
	_ = extractCmd.MarkFlagRequired("action")
	_ = extractCmd.RegisterFlagCompletionFunc("action", completeChoices(actionNames()...))
}

func extractCommand(cmd *cobra.Command, args []string) error {
	d, ok := jira.NewCatalog(nil).Lookup(extractActionFlag)
	if !ok {
		return withExitCode(ExitUsageError, fmt.Errorf("unknown action %q", extractActionFlag))
	}

	matchers := d.Patterns()
	if extractPatternFlag != "" {
		m, ok := findPattern(d, extractPatternFlag)
		if !ok {
			return withExitCode(ExitUsageError, fmt.Errorf("action %s has no pattern %q (have: %s)",
				extractActionFlag, extractPatternFlag, patternNames(matchers)))
		}
		matchers = []capture.Matcher{m}
	}
	if len(matchers) == 0 {
		return withExitCode(ExitUsageError, fmt.Errorf("action %s extracts nothing", extractActionFlag))
	}

	body, err := readInput(cmd, args[0])
	if err != nil {
		return withExitCode(ExitParseError, err)
	}

	missing := printExtractions(cmd.OutOrStdout(), body, matchers, extractAllFlag)
	if missing > 0 {
		return fmt.Errorf("%d of %d patterns found nothing", missing, len(matchers))
	}
	return nil
}

// printExtractions writes one line per match and returns how many matchers
// found nothing
func printExtractions(w io.Writer, body string, matchers []capture.Matcher, all bool) int {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	first := capture.ExtractAll(body, matchers...)

	missing := 0
	for _, m := range matchers {
		var found [][]string
		if all {
			found = capture.FindAll(body, m)
		} else if groups, ok := first[m.Name()]; ok {
			found = [][]string{groups}
		}

		if len(found) == 0 {
			missing++
			red.Fprintf(w, "%s: not found\n", m.Name())
			continue
		}
		for _, groups := range found {
			if m.Arity() == 0 {
				green.Fprintf(w, "%s: present\n", m.Name())
				continue
			}
			green.Fprintf(w, "%s: %s\n", m.Name(), strings.Join(groups, " | "))
		}
	}
	return missing
}

// findPattern accepts a full pattern name ("view_issue.issue_id") or its
// last segment ("issue_id")
func findPattern(d *jira.Descriptor, name string) (capture.Matcher, bool) {
	if m, ok := d.Pattern(name); ok {
		return m, true
	}
	for _, m := range d.Patterns() {
		if strings.HasSuffix(m.Name(), "."+name) {
			return m, true
		}
	}
	return nil, false
}

func patternNames(matchers []capture.Matcher) string {
	names := make([]string, len(matchers))
	for i, m := range matchers {
		names[i] = m.Name()
	}
	return strings.Join(names, ", ")
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("response file is empty")
	}
	return string(data), nil
}
