package main

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/paveg/csvread/internal/linereader"
	"github.com/paveg/csvread/internal/parallel"
)

type countResult struct {
	lines int
	err   error
}

func newCountCmd(a *app) *cobra.Command {
	var (
		exact   bool
		workers int
	)

	cmd := &cobra.Command{
		Use:   "count <file>...",
		Short: "Count the lines of one or more files",
		Long: `Count the lines of each file, decompressing .gz, .zst, .lz4, .xz and .bz2 inputs.
A final line without a newline counts. With several files each count is
printed next to its file name.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool := parallel.NewWorkerPoolContext(cmd.Context(), workers)
			defer pool.Close()

			results, err := parallel.ProcessIndexed(pool, args, func(_ int, path string) countResult {
				var r countResult
				if exact {
					r.lines, r.err = linereader.CountLines(path, linereader.WithChunkSize(a.cfg.ChunkSize))
				} else {
					r.lines, r.err = linereader.CountFileLines(path, a.cfg.ChunkSize)
				}
				return r
			})
			if err != nil {
				return err
			}

			var errs *multierror.Error
			for i, r := range results {
				if r.err != nil {
					errs = multierror.Append(errs, fmt.Errorf("counting %s: %w", args[i], r.err))
				}
			}
			if err := errs.ErrorOrNil(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, r := range results {
				a.logger.Debug("counted lines", "file", args[i], "lines", r.lines, "exact", exact)
				if len(args) == 1 {
					_, err = fmt.Fprintln(out, r.lines)
				} else {
					_, err = fmt.Fprintf(out, "%d\t%s\n", r.lines, args[i])
				}
				if err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&exact, "exact", false, "Count through the line reader instead of scanning for newlines")
	cmd.Flags().IntVarP(&workers, "jobs", "j", 0, "Files counted at once (0 uses GOMAXPROCS)")
	return cmd
}
