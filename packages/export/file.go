package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/abdul-hamid-achik/jiraload/packages/stress"
)

// Format names an export file format
type Format string

const (
	Prometheus Format = "prometheus"
	JSON       Format = "json"
	JUnit      Format = "junit"
)

// ParseFormat accepts "prometheus" (or "prom"), "json" and "junit"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prometheus", "prom":
		return Prometheus, nil
	case "json":
		return JSON, nil
	case "junit", "xml":
		return JUnit, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// FormatFor guesses the format from the file extension, defaulting to
// Prometheus text
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON
	case ".xml":
		return JUnit
	}
	return Prometheus
}

// WriteFile writes result to path. The file is written next to its final
// name and renamed so a collector never reads a partial file.
func WriteFile(path string, format Format, result *stress.Result, labels map[string]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	switch format {
	case JSON:
		err = stress.NewReporter(stress.WithWriter(tmp), stress.WithNoColor(true)).
			JSONSummary(result.Summary, result.Thresholds)
	case JUnit:
		err = WriteJUnit(tmp, result.Summary, result.Thresholds)
	default:
		err = WritePrometheus(tmp, result.Summary, result.Thresholds, labels)
	}
	if err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s export: %w", format, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
