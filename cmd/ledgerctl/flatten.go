package main

import (
	"github.com/spf13/cobra"

	"github.com/saturnines/ledger-core/pkg/report"
)

func newFlattenCmd(a *app) *cobra.Command {
	var out string
	var columnsFrom string

	cmd := &cobra.Command{
		Use:   "flatten <report.json>",
		Short: "Flatten a hierarchical report into one row per data line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readJSON(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			a.dumpValue(cmd.ErrOrStderr(), "report", raw)

			columns := raw
			if columnsFrom != "" {
				if columns, err = readJSON(columnsFrom, cmd.InOrStdin()); err != nil {
					return err
				}
			}

			table := report.Flatten(raw, columns)
			a.logger.Info("flattened report", "rows", len(table))
			return writeTable(out, cmd.OutOrStdout(), table, report.ColumnTitles(columns))
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (.json, .jsonl or .xlsx); stdout when empty")
	cmd.Flags().StringVar(&columnsFrom, "columns-from", "", "Read column titles from another document")
	return cmd
}
