package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sofmeright/buildcheck/src/check"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

// IsCI reports whether the process runs under a CI system.
func IsCI() bool {
	return os.Getenv("CI") == "true"
}

// IsGitLabCI reports whether the process runs under GitLab CI.
func IsGitLabCI() bool {
	return os.Getenv("GITLAB_CI") == "true"
}

// SectionStart opens a GitLab collapsible log section.
func SectionStart(w io.Writer, id, name string) {
	if !IsGitLabCI() {
		return
	}
	fmt.Fprintf(w, "\033[0Ksection_start:%d:%s\r\033[0K%s\n", time.Now().Unix(), id, name)
}

// SectionEnd closes a GitLab collapsible log section.
func SectionEnd(w io.Writer, id string) {
	if !IsGitLabCI() {
		return
	}
	fmt.Fprintf(w, "\033[0Ksection_end:%d:%s\r\033[0K\n", time.Now().Unix(), id)
}

// JUnit XML types for CI test reporting.

type JUnitTestSuites struct {
	XMLName  xml.Name         `xml:"testsuites"`
	Name     string           `xml:"name,attr"`
	Tests    int              `xml:"tests,attr"`
	Failures int              `xml:"failures,attr"`
	Time     string           `xml:"time,attr"`
	Suites   []JUnitTestSuite `xml:"testsuite"`
}

type JUnitTestSuite struct {
	Name     string          `xml:"name,attr"`
	Tests    int             `xml:"tests,attr"`
	Failures int             `xml:"failures,attr"`
	Cases    []JUnitTestCase `xml:"testcase"`
}

type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
}

type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// BuildJUnit converts a run into JUnit suites: one suite per rule, one case
// per project the rule ran in. Findings at or above failOn fail the case.
func BuildJUnit(res *check.Result, failOn ruleconfig.Severity, elapsed time.Duration) JUnitTestSuites {
	type key struct{ rule, project string }
	byCase := map[key][]check.Finding{}
	for _, f := range res.Findings {
		k := key{f.Rule, f.Project}
		byCase[k] = append(byCase[k], f)
	}

	root := JUnitTestSuites{Name: "buildcheck", Time: fmt.Sprintf("%.3f", elapsed.Seconds())}
	for _, st := range res.Stats {
		suite := JUnitTestSuite{Name: "buildcheck/" + st.Rule}
		for _, p := range res.Projects {
			if !ranIn(p, st.Rule) {
				continue
			}
			tc := JUnitTestCase{Name: p.Project, Classname: "buildcheck." + st.Rule}
			if ff := byCase[key{st.Rule, p.Project}]; len(ff) > 0 {
				worst := ruleconfig.SeverityNone
				lines := make([]string, 0, len(ff))
				for _, f := range ff {
					if f.Severity > worst {
						worst = f.Severity
					}
					lines = append(lines, fmt.Sprintf("  %s:%d [%s] %s", f.File, f.Line, f.Severity, f.Message))
				}
				if worst >= failOn {
					tc.Failure = &JUnitFailure{
						Message: fmt.Sprintf("%d finding(s) in %s", len(ff), p.Project),
						Type:    worst.String(),
						Body:    strings.Join(lines, "\n"),
					}
					suite.Failures++
				}
			}
			suite.Cases = append(suite.Cases, tc)
			suite.Tests++
		}
		root.Tests += suite.Tests
		root.Failures += suite.Failures
		root.Suites = append(root.Suites, suite)
	}
	return root
}

func ranIn(p check.ProjectReport, rule string) bool {
	for _, eff := range p.Rules {
		if eff.RuleID == rule {
			return eff.Enabled()
		}
	}
	return false
}

// WriteJUnit writes suites to dir/buildcheck.xml.
func WriteJUnit(dir string, suites JUnitTestSuites) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}
	path := filepath.Join(dir, "buildcheck.xml")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.WriteString(f, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(f)
	enc.Indent("", "  ")
	if err := enc.Encode(suites); err != nil {
		return fmt.Errorf("encoding junit xml: %w", err)
	}
	_, err = io.WriteString(f, "\n")
	return err
}
