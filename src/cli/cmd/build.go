package cmd

import (
	"fmt"

	"github.com/sofmeright/buildcheck/src/editorconfig"
	"github.com/sofmeright/buildcheck/src/project"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

// newProvider returns configuration state for exactly one build.
func newProvider() *ruleconfig.Provider {
	parser := editorconfig.NewParser(
		editorconfig.WithFileName(cfg.EditorConfig.FileName),
		editorconfig.WithLogger(logger.With().Str("component", "editorconfig").Logger()),
	)
	return ruleconfig.New(parser, ruleconfig.WithLogger(logger.With().Str("component", "ruleconfig").Logger()))
}

// discoverProjects finds every project under the root.
func discoverProjects() ([]project.Project, error) {
	markers, err := project.NewMatcher(cfg.Projects.Markers)
	if err != nil {
		return nil, fmt.Errorf("projects.markers: %w", err)
	}
	exclude, err := project.NewMatcher(cfg.Projects.Exclude)
	if err != nil {
		return nil, fmt.Errorf("projects.exclude: %w", err)
	}
	projects, err := project.Discover(rootDir, markers, exclude)
	if err != nil {
		return nil, fmt.Errorf("discovering projects: %w", err)
	}
	logger.Debug().Int("projects", len(projects)).Msg("projects discovered")
	return projects, nil
}
