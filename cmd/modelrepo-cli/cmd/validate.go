package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the document for structural problems",
	Long: `Load the document and report what would be repaired or dropped:
diagnostics from reading (unknown types, malformed fields, dangling
references), elements pruned by migrations, and reference index mismatches.

The command fails when any problem is found. Save the document with an edit
command to persist the repairs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		s := GetSession()
		problems := 0

		for _, d := range s.Diagnostics {
			fmt.Fprintf(out, "diagnostic: %s\n", d.String())
			problems++
		}
		if s.Migration != nil {
			for _, p := range s.Migration.Pruned {
				fmt.Fprintf(out, "migration %s: pruned %s(%s)\n", p.Rule, p.Type, p.ID)
				problems++
			}
		}
		for _, p := range s.Repo.Verify() {
			fmt.Fprintf(out, "index: %s\n", p)
			problems++
		}

		if problems > 0 {
			return fmt.Errorf("%d problem(s) found in %s", problems, s.Path())
		}
		fmt.Fprintf(out, "%s: %d elements, no problems\n", s.Path(), s.Repo.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
