package rules

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sofmeright/buildcheck/src/check"
	"github.com/sofmeright/buildcheck/src/project"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

func init() {
	check.Register("yaml", func() check.Rule { return &yamlRule{} })
}

// yamlRule reports YAML syntax errors and duplicate mapping keys.
type yamlRule struct{}

func (r *yamlRule) ID() string          { return "yaml" }
func (r *yamlRule) Description() string { return "YAML syntax errors and duplicate keys" }

func (r *yamlRule) DefaultConfiguration() ruleconfig.DefaultConfiguration {
	return ruleconfig.Defaults(ruleconfig.SeverityWarning, ruleconfig.ScopeWorkTreeImports)
}

func (r *yamlRule) Check(ctx context.Context, file project.File) ([]check.Finding, error) {
	switch strings.ToLower(filepath.Ext(file.Path)) {
	case ".yml", ".yaml":
	default:
		return nil, nil
	}

	data, err := os.ReadFile(file.AbsPath)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var findings []check.Finding
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return append(findings, check.Finding{
				File:    file.Path,
				Message: fmt.Sprintf("YAML parse error: %v", err),
			}), nil
		}
		duplicateKeys(&doc, file.Path, &findings)
	}
	return findings, nil
}

func duplicateKeys(node *yaml.Node, path string, findings *[]check.Finding) {
	switch node.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, child := range node.Content {
			duplicateKeys(child, path, findings)
		}
	case yaml.MappingNode:
		seen := make(map[string]int)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if first, ok := seen[key.Value]; ok {
				*findings = append(*findings, check.Finding{
					File:    path,
					Line:    key.Line,
					Column:  key.Column,
					Message: fmt.Sprintf("duplicate key %q (first defined at line %d)", key.Value, first),
				})
			} else {
				seen[key.Value] = key.Line
			}
			duplicateKeys(node.Content[i+1], path, findings)
		}
	}
}
