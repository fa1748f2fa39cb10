package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/paveg/csvread"
	"github.com/paveg/csvread/internal/loader"
)

// schemaFlags are the per-load settings shared by load and convert.
type schemaFlags struct {
	schemaFile  string
	types       []string
	names       []string
	nrows       int
	stripQuotes bool
}

func (f *schemaFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.schemaFile, "schema", "s", "", "Schema file (JSON or YAML)")
	cmd.Flags().StringSliceVarP(&f.types, "types", "t", nil, "Column types: integer, double, long, longhex, string")
	cmd.Flags().StringSliceVar(&f.names, "names", nil, "Column names; header names follow them in order")
	cmd.Flags().IntVar(&f.nrows, "nrows", 0, "Number of rows to allocate (0 counts the lines)")
	cmd.Flags().BoolVar(&f.stripQuotes, "strip-quotes", false, "Remove enclosing double quotes from fields")
}

// schema builds the load schema for file. Flags override the schema file;
// the configuration fills whatever is still unset.
func (f *schemaFlags) schema(cmd *cobra.Command, a *app, file string) (csvread.Schema, error) {
	var s csvread.Schema
	if f.schemaFile != "" {
		loaded, err := loader.LoadSchemaFile(f.schemaFile)
		if err != nil {
			return s, err
		}
		s = loaded
	}
	if file != "" {
		s.Filename = file
	}
	if len(f.types) > 0 {
		s.ColTypes = f.types
	}
	if len(f.names) > 0 {
		s.ColNames = f.names
	}
	if cmd.Flags().Changed("nrows") {
		s.NRows = f.nrows
	}
	if f.stripQuotes {
		s.StripQuotes = true
	}

	// Command-line settings beat the schema file.
	root := cmd.Root().PersistentFlags()
	if root.Changed("delimiter") {
		s.Delimiter = a.cfg.Delimiter
	}
	if root.Changed("header") {
		header := a.cfg.Header
		s.Header = &header
	}
	if root.Changed("na") {
		s.NAStrings = a.cfg.NAStrings
	}
	if root.Changed("string-na-policy") {
		s.StringNAPolicy = a.cfg.StringNAPolicy
	}
	return a.cfg.ApplyTo(s), nil
}

func newLoadCmd(a *app) *cobra.Command {
	var (
		sf     schemaFlags
		asJSON bool
		head   int
	)

	cmd := &cobra.Command{
		Use:   "load [file]",
		Short: "Load a file and report per-column statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := sf.schema(cmd, a, firstArg(args))
			if err != nil {
				return err
			}

			df, report, err := csvread.Load(schema, a.loadOptions()...)
			if err != nil {
				return err
			}
			defer df.Release()

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := gojson.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("marshaling report: %w", err)
				}
				_, err = fmt.Fprintln(out, string(data))
				return err
			}

			if err := writeReport(out, report); err != nil {
				return err
			}
			if head > 0 {
				fmt.Fprintln(out)
				preview := df.Head(head)
				defer preview.Release()
				return preview.Write(out, "csv", firstNA(schema.NAStrings))
			}
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the report as JSON")
	cmd.Flags().IntVar(&head, "head", 0, "Print the first N rows as CSV")
	return cmd
}

func writeReport(w io.Writer, r *csvread.Report) error {
	fmt.Fprintf(w, "file: %s\nrows: %d\n", r.File, r.Rows)
	if r.Lines >= 0 {
		fmt.Fprintf(w, "lines: %d\n", r.Lines)
	}
	if r.Dropped > 0 {
		fmt.Fprintf(w, "dropped: %d\n", r.Dropped)
	}
	fmt.Fprintf(w, "duration: %s\n\n", r.Duration)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tNA\tFAILED")
	for _, c := range r.Columns {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", c.Name, c.Type, c.Stats.NA, c.Stats.Failed)
	}
	return tw.Flush()
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// firstNA is the text written back for missing values.
func firstNA(nas []string) string {
	if len(nas) == 0 {
		return "NA"
	}
	return nas[0]
}
