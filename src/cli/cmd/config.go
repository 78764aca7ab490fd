package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sofmeright/buildcheck/src/check"
	"github.com/sofmeright/buildcheck/src/output"
	"github.com/sofmeright/buildcheck/src/ruleconfig"
)

var configFormat string

var configCmd = &cobra.Command{
	Use:   "config [project...]",
	Short: "Show the effective rule configuration of projects",
	Long: `Show the effective severity, scope and custom options of every rule.

Without arguments every discovered project is listed. Arguments are project
file paths relative to the root.`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().StringVar(&configFormat, "format", "table", "output format: table or yaml")
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configFormat != "table" && configFormat != "yaml" {
		return fmt.Errorf("unknown format %q (valid: table, yaml)", configFormat)
	}

	var paths, names []string
	if len(args) == 0 {
		projects, err := discoverProjects()
		if err != nil {
			return err
		}
		for _, p := range projects {
			paths = append(paths, p.Path)
			names = append(names, p.Name)
		}
	} else {
		for _, a := range args {
			abs := a
			if !filepath.IsAbs(abs) {
				abs = filepath.Join(rootDir, a)
			}
			paths = append(paths, abs)
			names = append(names, filepath.ToSlash(a))
		}
	}

	engine, err := check.NewEngine(newProvider(), cfg.Check.Rules, cfg.Check.Skip)
	if err != nil {
		return err
	}
	provider, rules := engine.Provider, engine.Rules()

	out := make([]output.ProjectConfig, len(paths))
	for i, path := range paths {
		out[i] = describeProject(provider, rules, names[i], path)
	}

	if configFormat == "yaml" {
		return output.WriteConfigYAML(cmd.OutOrStdout(), out)
	}
	output.ConfigTable(cmd.OutOrStdout(), out, output.UseColor())
	return nil
}

func describeProject(provider *ruleconfig.Provider, rules []ruleconfig.Rule, name, path string) output.ProjectConfig {
	pc := output.ProjectConfig{Project: name}
	effective, err := provider.MergedConfigurations(path, rules)
	if err != nil {
		pc.Error = err.Error()
		return pc
	}
	pc.Rules = effective
	for _, r := range rules {
		custom, err := provider.CustomConfiguration(path, r.ID())
		if err != nil || custom.IsNull() {
			continue
		}
		if pc.Custom == nil {
			pc.Custom = map[string]map[string]string{}
		}
		pc.Custom[r.ID()] = custom.Values
	}
	return pc
}
