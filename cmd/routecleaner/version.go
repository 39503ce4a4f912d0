package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"routecleaner/pkg/contracts"
)

func newVersionCmd(root *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  exactArgs(0),
		// Needs no configuration
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(_ *cobra.Command, _ []string) error {
			if !asJSON {
				fmt.Fprintln(root.stdout, contracts.GetVersionString())
				return nil
			}
			enc := json.NewEncoder(root.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(contracts.GetVersionInfo())
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print build details as JSON")
	return cmd
}
