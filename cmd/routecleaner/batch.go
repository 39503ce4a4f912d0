package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"routecleaner/internal/services"
)

func newBatchCmd(root *rootOptions) *cobra.Command {
	var (
		flags     runFlags
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Clean every delivery export in a directory",
		Long: `Clean every .xlsx and .csv file in a directory, each into its own
route sheet named "<prefix> <date> <input name>". Office lock files and
earlier route sheets are skipped. A failing file does not stop the batch;
the command fails at the end if any file failed.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}
			switch strings.ToLower(flags.summary) {
			case "":
			case "json", "csv":
				opts = append(opts, services.WithSummaryReport("summary."+strings.ToLower(flags.summary)))
			default:
				return &usageError{err: fmt.Errorf("--summary must be json or csv, got %q", flags.summary)}
			}
			if outputDir != "" {
				root.cfg.Output.Dir = outputDir
			}

			svc, shutdown, err := root.cleaningService()
			if err != nil {
				return err
			}
			defer shutdown()

			results, err := svc.ProcessDirectory(cmd.Context(), args[0], opts...)
			for _, res := range results {
				printResult(root.stdout, res)
			}
			if err != nil {
				if len(results) > 0 {
					return fmt.Errorf("%d file(s) cleaned, some failed: %w", len(results), err)
				}
				if errors.Is(err, services.ErrNoFilesFound) {
					return err
				}
				return fmt.Errorf("no file could be cleaned: %w", err)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "directory for the route sheets (default: next to each input)")
	cmd.Flags().StringVar(&flags.summary, "summary", "", "also write per-route counts next to each sheet: json or csv")
	return cmd
}
