package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/paveg/csvread/internal/version"
)

func newVersionCmd() *cobra.Command {
	var asJSON, deps bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Info()
			if !asJSON {
				_, err := fmt.Fprint(cmd.OutOrStdout(), info.String())
				return err
			}
			data, err := info.JSON(deps)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	cmd.Flags().BoolVar(&deps, "deps", false, "Include module dependencies in JSON output")
	return cmd
}
