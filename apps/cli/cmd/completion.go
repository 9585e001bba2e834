package cmd

import (
	"strings"

	"github.com/abdul-hamid-achik/jiraload/packages/export"
	"github.com/abdul-hamid-achik/jiraload/packages/jira"
	"github.com/abdul-hamid-achik/jiraload/packages/notify"
	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate a completion script for your shell. Besides commands and flags it
completes action names (extract --action) and the fixed choices of
run --mode, --export-format and --notify-on.

  $ source <(jiraload completion bash)
  $ jiraload completion zsh > "${fpath[1]}/_jiraload"
  $ jiraload completion fish > ~/.config/fish/completions/jiraload.fish
  PS> jiraload completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletionV2(out, true)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletionWithDesc(out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// completeChoices completes a flag from a fixed list, filtered by prefix.
func completeChoices(choices ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, c := range choices {
			if strings.HasPrefix(c, toComplete) {
				out = append(out, c)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

func actionNames() []string {
	names := make([]string, len(jira.Actions))
	for i, a := range jira.Actions {
		names[i] = a.String()
	}
	return names
}

func registerRunCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("mode", completeChoices("vu", "rate"))
	_ = cmd.RegisterFlagCompletionFunc("export-format", completeChoices(
		string(export.Prometheus), string(export.JSON), string(export.JUnit)))
	_ = cmd.RegisterFlagCompletionFunc("notify-on", completeChoices(
		string(notify.NotifyAlways), string(notify.NotifyFailure), string(notify.NotifySuccess)))
}
