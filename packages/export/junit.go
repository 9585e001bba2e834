package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/abdul-hamid-achik/jiraload/packages/stress"
)

type junitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Time       float64          `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr,omitempty"`
	TestSuites []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Time      float64         `xml:"time,attr"`
	TestCases []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// WriteJUnit writes the thresholds of a run as JUnit XML so CI systems
// show each one as a test case. A run without thresholds becomes one case
// that fails only when nothing succeeded.
func WriteJUnit(w io.Writer, summary *stress.Summary, thresholds []stress.ThresholdResult) error {
	seconds := summary.Duration.Seconds()
	suite := junitTestSuite{Name: "thresholds", Time: seconds}

	for _, t := range thresholds {
		tc := junitTestCase{Name: t.Name, ClassName: "jiraload.thresholds"}
		if !t.Passed {
			tc.Failure = &junitFailure{
				Message: fmt.Sprintf("%s: got %s, want %s", t.Name, t.Actual, t.Expected),
				Type:    "ThresholdFailed",
			}
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	if len(thresholds) == 0 {
		tc := junitTestCase{Name: "run", ClassName: "jiraload", Time: seconds}
		if summary.SuccessCount == 0 {
			tc.Failure = &junitFailure{
				Message: fmt.Sprintf("no action succeeded out of %d", summary.TotalRequests),
				Type:    "NoSuccess",
			}
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}
	suite.Tests = len(suite.TestCases)

	doc := junitTestSuites{
		Name:       "jiraload",
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		Time:       seconds,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		TestSuites: []junitTestSuite{suite},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	if err := encoder.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
