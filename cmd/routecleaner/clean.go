package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"routecleaner/internal/files"
	"routecleaner/internal/services"
)

// runFlags are the per-run overrides shared by clean and batch
type runFlags struct {
	rows    int
	format  string
	summary string
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.rows, "rows", "r", 0, "separator rows after each route group (default from config)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format: xlsx or csv (default from config)")
}

// options turns the flags that were set into run options
func (f *runFlags) options(cmd *cobra.Command) ([]services.RunOption, error) {
	var opts []services.RunOption
	if cmd.Flags().Changed("rows") {
		opts = append(opts, services.WithSeparatorSize(f.rows))
	}
	if f.format != "" {
		format, err := files.ParseFormat(f.format)
		if err != nil {
			return nil, err
		}
		opts = append(opts, services.WithOutputFormat(format))
	}
	return opts, nil
}

func newCleanCmd(root *rootOptions) *cobra.Command {
	var (
		flags  runFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "clean <input>",
		Short: "Clean one delivery export into a route sheet",
		Long: `Clean one .xlsx or .csv delivery export.

The route sheet is written next to the input as "<prefix> <date>.xlsx",
dated tomorrow by default, unless --output names another file.`,
		Example: `  routecleaner clean export.xlsx
  routecleaner clean --rows 3 --format csv -o routes.csv export.xlsx
  routecleaner clean --summary routes.json export.xlsx`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}
			if output != "" {
				opts = append(opts, services.WithOutputPath(output))
			}
			if flags.summary != "" {
				opts = append(opts, services.WithSummaryReport(flags.summary))
			}

			svc, shutdown, err := root.cleaningService()
			if err != nil {
				return err
			}
			defer shutdown()

			res, err := svc.ProcessFile(cmd.Context(), args[0], opts...)
			if err != nil {
				return err
			}
			printResult(root.stdout, res)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: generated name next to the input)")
	cmd.Flags().StringVar(&flags.summary, "summary", "", "also write per-route counts to this .json or .csv file")
	return cmd
}

// printResult reports a finished run on stdout
func printResult(w io.Writer, res *services.Result) {
	s := res.Summary
	fmt.Fprintf(w, "%s: %d rows in, %d duplicates removed, %d uncategorized dropped, %d groups, %d rows written\n",
		res.OutputPath, s.InputRows, s.DuplicatesRemoved, s.Uncategorized, s.Groups, s.OutputRows)
	if res.ReportPath != "" {
		fmt.Fprintf(w, "summary: %s\n", res.ReportPath)
	}
}

// exactArgs is cobra.ExactArgs reporting a usage error
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}
