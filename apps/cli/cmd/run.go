package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/abdul-hamid-achik/jiraload/packages/builtin"
	"github.com/abdul-hamid-achik/jiraload/packages/core/config"
	"github.com/abdul-hamid-achik/jiraload/packages/core/env"
	"github.com/abdul-hamid-achik/jiraload/packages/dataset"
	"github.com/abdul-hamid-achik/jiraload/packages/export"
	"github.com/abdul-hamid-achik/jiraload/packages/http"
	"github.com/abdul-hamid-achik/jiraload/packages/jira"
	"github.com/abdul-hamid-achik/jiraload/packages/notify"
	"github.com/abdul-hamid-achik/jiraload/packages/resources"
	"github.com/abdul-hamid-achik/jiraload/packages/scenario"
	"github.com/abdul-hamid-achik/jiraload/packages/stress"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a load test against a Jira instance",
	Long: `Run a load test. Virtual users log in with accounts from the dataset and
run the weighted action mix from the configuration.

Examples:
  # Ten users for five minutes using jiraload.yaml
  jiraload run --vus 10 --duration 5m

  # Constant iteration rate with ramp-up
  jiraload run --rate 20 --duration 10m --ramp-up 1m

  # Against the local fake Jira
  jiraload run --base-url http://localhost:8080 --dataset sqlite://jira.db

  # With thresholds for CI/CD
  jiraload run -d 1m -u 20 --threshold "p95<2s,errors<1%"`,
	Args: cobra.NoArgs,
	RunE: runCommand,
}

var (
	runConfigFlag     string
	runEnvFileFlag    string
	runBaseURLFlag    string
	runDatasetFlag    string
	runResourcesFlag  string
	runModeFlag       string
	runDurationFlag   string
	runRateFlag       float64
	runVUsFlag        int
	runMaxVUsFlag     int
	runThinkTimeFlag  string
	runRampUpFlag     string
	runThresholdFlag  string
	runNoProgressFlag bool
	runNoColorFlag    bool
	runVerboseFlag    bool
	runJSONFlag       bool
	runProxyFlag      string
	runInsecureFlag   bool
	runExportFlag     string
	runExportFmtFlag  string
	runNotifyOnFlag   string
)

func init() {
	runCmd.Flags().StringVarP(&runConfigFlag, "config", "c", "", "Config file (default: jiraload.yaml in the working directory)")
	runCmd.Flags().StringVar(&runEnvFileFlag, "env-file", "", "Load variables from a .env file before reading the config")
	runCmd.Flags().StringVar(&runBaseURLFlag, "base-url", "", "Jira base URL")
	runCmd.Flags().StringVar(&runDatasetFlag, "dataset", "", "Dataset connection string (e.g., sqlite://jira.db)")
	runCmd.Flags().StringVar(&runResourcesFlag, "resources", "", "Resource store JSON file (default: embedded store)")
	runCmd.Flags().StringVar(&runModeFlag, "mode", "", "Execution mode: vu or rate")
	runCmd.Flags().StringVarP(&runDurationFlag, "duration", "d", "", "Test duration (e.g., 30s, 5m, 1h)")
	runCmd.Flags().Float64VarP(&runRateFlag, "rate", "r", 0, "Iterations per second (selects rate mode)")
	runCmd.Flags().IntVarP(&runVUsFlag, "vus", "u", 0, "Number of virtual users (selects VU mode)")
	runCmd.Flags().IntVar(&runMaxVUsFlag, "max-vus", 0, "Maximum concurrent sessions")
	runCmd.Flags().StringVarP(&runThinkTimeFlag, "think-time", "t", "", "Think time between actions per VU")
	runCmd.Flags().StringVar(&runRampUpFlag, "ramp-up", "", "Ramp-up time to reach target rate/VUs")
	runCmd.Flags().StringVar(&runThresholdFlag, "threshold", "", "Pass/fail thresholds (e.g., \"p95<2s,errors<1%\")")
	runCmd.Flags().BoolVar(&runNoProgressFlag, "no-progress", false, "Disable real-time progress display")
	runCmd.Flags().BoolVar(&runNoColorFlag, "no-color", false, "Disable colored output")
	runCmd.Flags().BoolVarP(&runVerboseFlag, "verbose", "v", false, "Verbose output with per-action latencies")
	runCmd.Flags().BoolVar(&runJSONFlag, "json", false, "Output results as JSON")
	runCmd.Flags().StringVar(&runProxyFlag, "proxy", "", "Proxy URL for HTTP requests")
	runCmd.Flags().BoolVarP(&runInsecureFlag, "insecure", "k", false, "Disable SSL certificate validation")
	runCmd.Flags().StringVar(&runExportFlag, "export", "", "Write the summary to a file (e.g., /var/lib/node_exporter/jiraload.prom)")
	runCmd.Flags().StringVar(&runNotifyOnFlag, "notify-on", "", "When to post to the configured webhooks: always, failure or success")
	runCmd.Flags().StringVar(&runExportFmtFlag, "export-format", "", "Export format: prometheus, json or junit (default: from the file extension)")
	registerRunCompletions(runCmd)
}

func runCommand(cmd *cobra.Command, args []string) error {
	if runEnvFileFlag != "" {
		if _, err := env.LoadAndExportDotEnv(runEnvFileFlag); err != nil {
			return withExitCode(ExitConfigError, err)
		}
	}

	fileConfig, err := config.LoadConfig(runConfigFlag)
	if err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("loading config: %w", err))
	}

	cfg := fileConfig.Merge(flagConfig(cmd))
	if err := cfg.Validate(); err != nil {
		return withExitCode(ExitConfigError, err)
	}

	stressCfg, err := stress.FromSettings(cfg.Stress)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	exportFormat := export.FormatFor(runExportFlag)
	if runExportFmtFlag != "" {
		if exportFormat, err = export.ParseFormat(runExportFmtFlag); err != nil {
			return withExitCode(ExitUsageError, err)
		}
	}

	notifier, err := notifiers(cfg)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	catalog, err := loadCatalog(cfg.Resources)
	if err != nil {
		return withExitCode(ExitParseError, err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	data, err := dataset.LoadFile(ctx, cfg.Dataset)
	if err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("loading dataset: %w", err))
	}

	workload, err := scenario.NewWorkload(cfg.BaseURL, data,
		scenario.WithCatalog(catalog),
		scenario.WithClientOptions(clientOptions(cfg)...),
	)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	reporterOpts := []stress.ReporterOption{
		stress.WithNoColor(runNoColorFlag || cfg.GetNoColor()),
		stress.WithNoProgress(runNoProgressFlag || runJSONFlag),
		stress.WithVerbose(cfg.GetVerbose()),
	}
	// stdout carries only the JSON document
	if runJSONFlag {
		reporterOpts = append(reporterOpts, stress.WithWriter(cmd.ErrOrStderr()))
	}
	reporter := stress.NewReporter(reporterOpts...)

	runner := stress.NewRunner(stressCfg, workload,
		stress.WithReporter(reporter),
		stress.WithMetrics(stress.NewMetrics(stress.WithErrorClassifier(scenario.ErrorKind))),
		stress.WithTarget(workload.BaseURL()),
		stress.WithVersion(version),
	)
	runner.AddActions(cfg.Actions)

	runID := builtin.NewRunID()
	reporter.Info("Run %s: %d users, %d projects, %d issues, %d boards",
		runID, len(data.Users()), len(data.Projects()), len(data.Issues()), len(data.Boards()))

	result, err := runner.Run(ctx)
	if err != nil {
		return withExitCode(ExitConfigError, err)
	}

	if runExportFlag != "" {
		labels := map[string]string{"run": runID}
		if err := export.WriteFile(runExportFlag, exportFormat, result, labels); err != nil {
			reporter.Error("%v", err)
		}
	}

	if notifier.Len() > 0 {
		if err := notifier.Notify(context.Background(), notify.Summarize(runID, workload.BaseURL(), result)); err != nil {
			reporter.Warn("notification failed: %v", err)
		}
	}

	if runJSONFlag {
		jsonReporter := stress.NewReporter(stress.WithWriter(cmd.OutOrStdout()))
		if err := jsonReporter.JSONSummary(result.Summary, result.Thresholds); err != nil {
			return err
		}
	}

	if result.HasThresholdFailures() {
		return withExitCode(ExitTestFailure, errors.New("thresholds failed"))
	}
	return nil
}

// flagConfig turns the explicitly set flags into a config that overrides
// the file
func flagConfig(cmd *cobra.Command) *config.Config {
	flags := cmd.Flags()
	c := &config.Config{
		BaseURL:   runBaseURLFlag,
		Dataset:   runDatasetFlag,
		Resources: runResourcesFlag,
		Proxy:     runProxyFlag,
		Stress: config.StressConfig{
			Mode:       runModeFlag,
			Duration:   runDurationFlag,
			MaxVUs:     runMaxVUsFlag,
			ThinkTime:  runThinkTimeFlag,
			RampUp:     runRampUpFlag,
			Thresholds: runThresholdFlag,
		},
	}

	if flags.Changed("rate") {
		c.Stress.Rate = runRateFlag
		if !flags.Changed("mode") {
			c.Stress.Mode = stress.RateMode.String()
		}
	}
	if flags.Changed("vus") {
		c.Stress.VUs = runVUsFlag
		if !flags.Changed("mode") {
			c.Stress.Mode = stress.VUMode.String()
		}
	}
	if runNotifyOnFlag != "" {
		c.Notify.On = runNotifyOnFlag
	}
	if runInsecureFlag {
		c.ValidateSSL = config.BoolPtr(false)
	}
	if flags.Changed("verbose") {
		c.Verbose = config.BoolPtr(runVerboseFlag)
	}
	return c
}

func clientOptions(cfg *config.Config) []http.ClientOption {
	opts := []http.ClientOption{
		http.WithValidateSSL(cfg.GetValidateSSL()),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, http.WithTimeout(cfg.TimeoutDuration()))
	}
	if cfg.Proxy != "" {
		opts = append(opts, http.WithProxy(cfg.Proxy))
	}
	if len(cfg.Headers) > 0 {
		opts = append(opts, http.WithDefaultHeaders(cfg.Headers))
	}
	return opts
}

// notifiers builds the webhook notifiers named in the config
func notifiers(cfg *config.Config) (*notify.Manager, error) {
	on, err := notify.ParseNotifyOn(cfg.Notify.On)
	if err != nil {
		return nil, err
	}

	m := notify.NewManager(on)
	if cfg.Notify.Slack != "" {
		m.AddNotifier(notify.NewSlackNotifier(cfg.Notify.Slack, notify.WithSlackChannel(cfg.Notify.SlackChannel)))
	}
	if cfg.Notify.Teams != "" {
		m.AddNotifier(notify.NewTeamsNotifier(cfg.Notify.Teams))
	}
	return m, nil
}

// loadCatalog builds the action catalog over the resource store at path,
// or the embedded store when path is empty
func loadCatalog(path string) (*jira.Catalog, error) {
	if path == "" {
		return jira.DefaultCatalog()
	}
	store, err := resources.Load(path)
	if err != nil {
		return nil, err
	}
	return jira.NewCatalog(store), nil
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nReceived interrupt, stopping gracefully...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
