package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paveg/csvread"
	csvio "github.com/paveg/csvread/internal/io"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		sf     schemaFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "convert <file> <output>",
		Short: "Load a file and write it as CSV, Parquet, Arrow IPC or JSON Lines",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := args[1]
			f, err := resolveFormat(format, output)
			if err != nil {
				return err
			}

			schema, err := sf.schema(cmd, a, args[0])
			if err != nil {
				return err
			}
			df, report, err := csvread.Load(schema, a.loadOptions()...)
			if err != nil {
				return err
			}
			defer df.Release()

			out, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := df.Write(out, string(f), firstNA(schema.NAStrings)); err != nil {
				_ = out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return fmt.Errorf("closing %s: %w", output, err)
			}

			a.logger.Info("converted", "input", args[0], "output", output, "format", f, "rows", report.Rows)
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format (default: from the output extension)")
	return cmd
}

func resolveFormat(format, output string) (csvio.Format, error) {
	if format != "" {
		return csvio.ParseFormat(format)
	}
	return csvio.FormatFromPath(output)
}
