package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/saturnines/ledger-core/pkg/config"
	"github.com/saturnines/ledger-core/pkg/report"
	"github.com/saturnines/ledger-core/pkg/transport/rest"
)

func newReportCmd(a *app) *cobra.Command {
	var jobFile, out, responsesOut string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Query a report, splitting the period while the result is truncated",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := config.LoadReportJob(jobFile)
			if err != nil {
				return err
			}
			a.dumpValue(cmd.ErrOrStderr(), "job", job)

			period, err := job.ReportPeriod()
			if err != nil {
				return err
			}

			client, err := rest.NewReportClientFromJob(job, a.logger)
			if err != nil {
				return err
			}

			var querier report.Querier = client
			if job.CacheSize > 0 {
				if querier, err = report.NewCachedQuerier(client, job.CacheSize); err != nil {
					return err
				}
			}

			options := []report.Option{
				report.WithMaxDepth(job.MaxDepth),
				report.WithLogger(a.logger),
			}
			if job.Parallel {
				options = append(options, report.WithParallelHalves())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := report.NewBisector(querier, options...).Query(ctx, job.ReportType, period, job.Params)
			if err != nil {
				return err
			}
			a.logger.Info("report complete",
				"report", job.ReportType,
				"rows", len(res.Table),
				"queries", len(res.Periods),
			)

			if responsesOut != "" {
				if err := writeJSONTo(responsesOut, cmd.OutOrStdout(), res.Responses); err != nil {
					return err
				}
			}

			var titles []string
			if len(res.Responses) > 0 {
				titles = report.ColumnTitles(res.Responses[0])
			}
			return writeTable(out, cmd.OutOrStdout(), res.Table, titles)
		},
	}

	cmd.Flags().StringVar(&jobFile, "job", "", "YAML report job")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (.json, .jsonl or .xlsx); stdout when empty")
	cmd.Flags().StringVar(&responsesOut, "responses", "", "Also save the raw responses to this file")
	cmd.MarkFlagRequired("job")
	return cmd
}
