package output

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sofmeright/buildcheck/src/check"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

// Colors for terminal output.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// Counts tallies findings by severity.
type Counts struct {
	Total       int
	Errors      int
	Warnings    int
	Infos       int
	Suggestions int
}

// CountFindings tallies findings by severity.
func CountFindings(findings []check.Finding) Counts {
	var c Counts
	for _, f := range findings {
		c.Total++
		switch f.Severity {
		case ruleconfig.SeverityError:
			c.Errors++
		case ruleconfig.SeverityWarning:
			c.Warnings++
		case ruleconfig.SeverityInfo:
			c.Infos++
		case ruleconfig.SeveritySuggestion:
			c.Suggestions++
		}
	}
	return c
}

// SummaryLine returns a one-line findings summary, optionally colored.
func SummaryLine(c Counts, files int, color bool) string {
	var parts []string
	add := func(n int, label, col string) {
		if n == 0 {
			return
		}
		s := fmt.Sprintf("%d %s", n, label)
		if color && col != "" {
			s = col + s + colorReset
		}
		parts = append(parts, s)
	}
	add(c.Errors, "error", colorRed)
	add(c.Warnings, "warning", colorYellow)
	add(c.Infos, "info", "")
	add(c.Suggestions, "suggestion", colorGray)

	summary := "no findings"
	if len(parts) > 0 {
		summary = strings.Join(parts, ", ")
	}
	total := fmt.Sprintf("%d", c.Total)
	if color {
		total = colorBold + total + colorReset
	}
	return fmt.Sprintf("%s findings in %d files: %s", total, files, summary)
}

// severityTag returns a short severity label, optionally colored.
func severityTag(s ruleconfig.Severity, color bool) string {
	var tag, col string
	switch s {
	case ruleconfig.SeverityError:
		tag, col = "ERR", colorRed
	case ruleconfig.SeverityWarning:
		tag, col = "WARN", colorYellow
	case ruleconfig.SeverityInfo:
		tag, col = "INFO", colorCyan
	case ruleconfig.SeveritySuggestion:
		tag, col = "HINT", colorGray
	default:
		return s.String()
	}
	if !color {
		return tag
	}
	return col + tag + colorReset
}

// RuleTable writes per-rule statistics inside a section.
func RuleTable(sec *Section, stats []check.RuleStats) {
	sec.Row("%-16s%6s  %6s  %8s", "rule", "files", "cached", "findings")
	for _, s := range stats {
		sec.Row("%-16s%6d  %6d  %8d", s.Rule, s.Files, s.Cached, s.Findings)
	}
}

// SectionFindings renders findings grouped by project and file inside a
// section.
func SectionFindings(sec *Section, findings []check.Finding, color bool) {
	if len(findings) == 0 {
		return
	}

	type group struct{ project, file string }
	byFile := map[group][]check.Finding{}
	var keys []group
	for _, f := range findings {
		k := group{f.Project, f.File}
		if _, ok := byFile[k]; !ok {
			keys = append(keys, k)
		}
		byFile[k] = append(byFile[k], f)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].project != keys[j].project {
			return keys[i].project < keys[j].project
		}
		return keys[i].file < keys[j].file
	})

	sec.Row("")
	lastProject := ""
	for _, k := range keys {
		if k.project != lastProject {
			sec.Row("%s", bold("["+k.project+"]", color))
			lastProject = k.project
		}
		sec.Row("%s", bold(k.file, color))

		ff := byFile[k]
		sort.SliceStable(ff, func(i, j int) bool {
			a, b := ff[i], ff[j]
			if a.Line != b.Line {
				return a.Line < b.Line
			}
			if a.Column != b.Column {
				return a.Column < b.Column
			}
			return a.Rule < b.Rule
		})
		for _, f := range ff {
			loc := "-"
			switch {
			case f.Line > 0 && f.Column > 0:
				loc = fmt.Sprintf("%d:%d", f.Line, f.Column)
			case f.Line > 0:
				loc = fmt.Sprintf("%d", f.Line)
			}
			sec.Row("  %-8s %-4s  %-12s %s", loc, severityTag(f.Severity, color), f.Rule, f.Message)
		}
		sec.Row("")
	}
}

func bold(text string, color bool) string {
	if !color {
		return text
	}
	return colorBold + text + colorReset
}

func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// UseColor reports whether colored output should be used. NO_COLOR and
// TERM=dumb disable it.
func UseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isTerminal() || IsCI()
}
