package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/jiraload/packages/jira"
	"github.com/abdul-hamid-achik/jiraload/packages/resources"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// WatchDebounceDelay is the debounce delay for file watch events
const WatchDebounceDelay = 300 * time.Millisecond

var validateWatchFlag bool

var validateCmd = &cobra.Command{
	Use:   "validate [resources.json]",
	Short: "Validate a resource store against the action catalog",
	Long: `Load a resource store, check it against the schema and make sure every
action that needs a body template finds one. Without an argument the
embedded store is checked.

Examples:
  jiraload validate
  jiraload validate ./resources.json
  jiraload validate ./resources.json --watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: validateCommand,
}

func init() {
	validateCmd.Flags().BoolVarP(&validateWatchFlag, "watch", "w", false, "Re-validate whenever the file changes")
}

func validateCommand(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	err := validateStore(cmd.OutOrStdout(), path)
	if !validateWatchFlag {
		return withExitCode(ExitParseError, err)
	}
	if path == "" {
		return withExitCode(ExitUsageError, errors.New("--watch needs a resource file"))
	}

	return watchStore(cmd, path)
}

// validateStore loads the store at path, or the embedded one, and reports
// the templates it is missing
func validateStore(w io.Writer, path string) error {
	var (
		store *resources.Store
		err   error
	)
	if path == "" {
		store, err = resources.Default()
	} else {
		store, err = resources.Load(path)
	}
	if err != nil {
		fmt.Fprintf(w, "Invalid: %v\n", err)
		return err
	}

	catalog := jira.NewCatalog(store)
	if missing := catalog.MissingTemplates(); len(missing) > 0 {
		for _, key := range missing {
			fmt.Fprintf(w, "Missing template: %s\n", key)
		}
		return fmt.Errorf("%s: %d templates missing", store.Source(), len(missing))
	}

	fmt.Fprintf(w, "Valid: %s (%d actions)\n", store.Source(), store.Len())
	return nil
}

// watchStore re-validates path on every write until interrupted. Editors
// often replace the file, so the parent directory is watched.
func watchStore(cmd *cobra.Command, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nWatching %s for changes... (press Ctrl+C to stop)\n", path)

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(out, "\nFile changed: %s\n", event.Name)
				_ = validateStore(out, path)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watcher error: %v\n", err)
		}
	}
}
