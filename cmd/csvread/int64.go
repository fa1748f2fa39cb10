package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/paveg/csvread/internal/int64codec"
)

func newInt64Cmd() *cobra.Command {
	var from, to int

	cmd := &cobra.Command{
		Use:   "int64 <value>...",
		Short: "Convert 64-bit integers between bases",
		Long:  `Parse each value in the --from base and print it in the --to base. Values that do not parse print as NA.`,
		Example: `  csvread int64 --from 16 ff 7fffffffffffffff
  csvread int64 --to 2 42`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			slots, err := int64codec.CharToInt64(args, from)
			if err != nil {
				return err
			}
			texts, err := int64codec.Int64ToBase(slots, to)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(texts, "\n"))
			return err
		},
	}

	cmd.Flags().IntVar(&from, "from", 10, "Base of the input values (2-16)")
	cmd.Flags().IntVar(&to, "to", 10, "Base of the output values (2-16)")
	return cmd
}
