package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/abdul-hamid-achik/jiraload/packages/dataset"
	"github.com/abdul-hamid-achik/jiraload/packages/mock"
	"github.com/spf13/cobra"
)

var (
	mockPortFlag         int
	mockDelayFlag        string
	mockVerboseFlag      bool
	mockDatasetFlag      string
	mockWriteDatasetFlag string
	mockUsersFlag        int
	mockProjectsFlag     int
	mockIssuesFlag       int
	mockBoardsFlag       int
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Start a fake Jira server",
	Long: `Start a fake Jira that answers every request a jiraload session makes.
Pages carry the same tokens and markers as real Jira, so a run against it
exercises the whole extraction pipeline.

The fake Jira serves a generated dataset unless --dataset is given. With
--write-dataset the served data is saved so 'jiraload run' can log in with
the same accounts.

Examples:
  jiraload mock
  jiraload mock --port 8080 --write-dataset sqlite://jira.db
  jiraload mock --delay 50ms --verbose`,
	Args: cobra.NoArgs,
	RunE: mockCommand,
}

func init() {
	defaults := mock.DefaultSeedOptions()
	mockCmd.Flags().IntVarP(&mockPortFlag, "port", "p", 8080, "Port to run the mock server on")
	mockCmd.Flags().StringVarP(&mockDelayFlag, "delay", "d", "0", "Delay to add to all responses (e.g., 100ms, 1s)")
	mockCmd.Flags().BoolVarP(&mockVerboseFlag, "verbose", "v", false, "Enable verbose logging")
	mockCmd.Flags().StringVar(&mockDatasetFlag, "dataset", "", "Serve this dataset instead of a generated one")
	mockCmd.Flags().StringVar(&mockWriteDatasetFlag, "write-dataset", "", "Save the served dataset (e.g., sqlite://jira.db)")
	mockCmd.Flags().IntVar(&mockUsersFlag, "users", defaults.Users, "Generated users")
	mockCmd.Flags().IntVar(&mockProjectsFlag, "projects", defaults.Projects, "Generated projects")
	mockCmd.Flags().IntVar(&mockIssuesFlag, "issues", defaults.IssuesPerProject, "Generated issues per project")
	mockCmd.Flags().IntVar(&mockBoardsFlag, "boards", defaults.Boards, "Generated boards")
}

func mockCommand(cmd *cobra.Command, args []string) error {
	var delay time.Duration
	if mockDelayFlag != "0" {
		var err error
		delay, err = time.ParseDuration(mockDelayFlag)
		if err != nil {
			return withExitCode(ExitUsageError, fmt.Errorf("invalid delay value %q: %w", mockDelayFlag, err))
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	data, err := mockDataset(ctx)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	if mockWriteDatasetFlag != "" {
		if err := dataset.WriteFile(ctx, mockWriteDatasetFlag, data); err != nil {
			return withExitCode(ExitConfigError, fmt.Errorf("writing dataset: %w", err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Dataset written to %s\n", mockWriteDatasetFlag)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Serving %d users, %d projects, %d issues, %d boards\n",
		len(data.Users()), len(data.Projects()), len(data.Issues()), len(data.Boards()))

	server := mock.NewServer(data,
		mock.WithPort(mockPortFlag),
		mock.WithDelay(delay),
		mock.WithVerbose(mockVerboseFlag),
	)
	return server.StartWithContext(ctx)
}

func mockDataset(ctx context.Context) (*dataset.Dataset, error) {
	if mockDatasetFlag != "" {
		return dataset.LoadFile(ctx, mockDatasetFlag)
	}
	return mock.Seed(mock.SeedOptions{
		Users:            mockUsersFlag,
		Projects:         mockProjectsFlag,
		IssuesPerProject: mockIssuesFlag,
		Boards:           mockBoardsFlag,
	}), nil
}
