package rules

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sofmeright/buildcheck/src/check"
	"github.com/sofmeright/buildcheck/src/project"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

const (
	styleLF   = "lf"
	styleCRLF = "crlf"
	styleAny  = "any"
)

func init() {
	check.Register("lineendings", func() check.Rule { return &lineEndingsRule{style: styleLF} })
}

type lineEndingsRule struct {
	style string
}

func (r *lineEndingsRule) ID() string { return "lineendings" }
func (r *lineEndingsRule) Description() string {
	return "line ending style, trailing whitespace and final newline"
}

func (r *lineEndingsRule) DefaultConfiguration() ruleconfig.DefaultConfiguration {
	return ruleconfig.Defaults(ruleconfig.SeverityInfo, ruleconfig.ScopeWorkTreeImports)
}

func (r *lineEndingsRule) Configure(custom ruleconfig.CustomConfigurationData) error {
	style := styleLF
	if raw, ok := custom.Get("style"); ok {
		style = strings.ToLower(strings.TrimSpace(raw))
	}
	switch style {
	case styleLF, styleCRLF, styleAny:
		r.style = style
		return nil
	}
	return fmt.Errorf("%s: style must be lf, crlf or any, got %q", r.ID(), style)
}

func (r *lineEndingsRule) Check(ctx context.Context, file project.File) ([]check.Finding, error) {
	data, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var findings []check.Finding
	add := func(line int, msg string) {
		findings = append(findings, check.Finding{File: file.Path, Line: line, Message: msg})
	}

	crlf := bytes.Count(data, []byte("\r\n"))
	lf := bytes.Count(data, []byte("\n")) - crlf
	switch {
	case crlf > 0 && lf > 0:
		add(1, "mixed line endings (CRLF and LF)")
	case r.style == styleLF && crlf > 0:
		add(1, "file uses CRLF line endings")
	case r.style == styleCRLF && lf > 0:
		add(1, "file uses LF line endings")
	}

	lines := bytes.Split(data, []byte("\n"))
	for i, line := range lines {
		if i == len(lines)-1 && len(line) == 0 {
			continue
		}
		stripped := bytes.TrimRight(line, "\r")
		if len(bytes.TrimRight(stripped, " \t")) < len(stripped) {
			add(i+1, "trailing whitespace")
		}
	}

	if data[len(data)-1] != '\n' {
		add(len(lines), "missing final newline")
	}
	return findings, nil
}
