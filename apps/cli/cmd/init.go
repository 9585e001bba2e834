package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/abdul-hamid-achik/jiraload/packages/core/config"
	"github.com/spf13/cobra"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new jiraload project",
	Long: `Initialize a new jiraload project in the current directory.

This creates:
  - jiraload.yaml  - Configuration with the default action mix
  - .env.example   - Variables referenced from the configuration

Examples:
  jiraload init
  jiraload init --force`,
	Args: cobra.NoArgs,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const envExample = `# Copy to .env and pass --env-file .env to 'jiraload run'
JIRA_URL=http://localhost:8080
JIRA_DATASET=sqlite://jiraload.db
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	return initProject(cmd, cwd)
}

func initProject(cmd *cobra.Command, dir string) error {
	configFile := filepath.Join(dir, config.ConfigFilenames[0])
	envFile := filepath.Join(dir, ".env.example")

	if !forceInit {
		for _, f := range []string{configFile, envFile} {
			if _, err := os.Stat(f); err == nil {
				return withExitCode(ExitUsageError, fmt.Errorf("file already exists: %s (use --force to overwrite)", f))
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.BaseURL = "${JIRA_URL}"
	cfg.Dataset = "${JIRA_DATASET}"
	cfg.Stress.Thresholds = "p95<2s,errors<5%"

	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(envFile, []byte(envExample), 0644); err != nil {
		return fmt.Errorf("failed to create env file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", envFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\njiraload project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Start a fake Jira with 'jiraload mock --write-dataset sqlite://jiraload.db',\n")
	fmt.Fprintf(cmd.OutOrStdout(), "then run 'jiraload run --env-file .env'.\n")

	return nil
}
