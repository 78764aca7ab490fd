package check

import "github.com/sofmeright/buildcheck/src/ruleconfig"

// Finding is a single check result. Rules fill in File, Line, Column and
// Message; the engine stamps Project, Rule and Severity.
type Finding struct {
	Project  string              `json:"project"`
	File     string              `json:"file"`
	Line     int                 `json:"line"`
	Column   int                 `json:"column,omitempty"`
	Rule     string              `json:"rule"`
	Severity ruleconfig.Severity `json:"severity"`
	Message  string              `json:"message"`
}
