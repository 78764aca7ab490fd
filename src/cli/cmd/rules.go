package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sofmeright/buildcheck/src/check"
	"github.com/sofmeright/buildcheck/src/output"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the built-in rules and their defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		var infos []output.RuleInfo
		for _, id := range check.All() {
			r, err := check.Get(id)
			if err != nil {
				return err
			}
			infos = append(infos, output.RuleInfo{
				ID:          r.ID(),
				Description: r.Description(),
				Default:     r.DefaultConfiguration(),
			})
		}
		output.RuleList(cmd.OutOrStdout(), infos, output.UseColor())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}
