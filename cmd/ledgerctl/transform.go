package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saturnines/ledger-core/pkg/config"
	"github.com/saturnines/ledger-core/pkg/maps/qbo"
	"github.com/saturnines/ledger-core/pkg/transform"
)

const builtinQBOTransaction = "qbo-transaction"

func newTransformCmd(a *app) *cobra.Command {
	var mapFile, name, builtin, endpoint, out string
	var dedupe []string
	var props map[string]string

	cmd := &cobra.Command{
		Use:   "transform <records.json>",
		Short: "Extract flat records from source objects with an extraction map",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, opts, err := loadTransform(mapFile, name, builtin, endpoint)
			if err != nil {
				return err
			}
			if len(props) > 0 {
				if opts.Props == nil {
					opts.Props = transform.Record{}
				}
				for k, v := range props {
					opts.Props[k] = v
				}
			}

			records, single, err := readRecords(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			a.dumpValue(cmd.ErrOrStderr(), "records", records)

			results, err := transform.TransformMany(records, m, opts)
			if err != nil {
				return err
			}
			if len(dedupe) > 0 {
				results = transform.DeduplicateRecords(results, dedupe)
			}
			a.logger.Info("transformed records", "in", len(records), "out", len(results))

			if single && len(results) == 1 {
				return writeJSONTo(out, cmd.OutOrStdout(), results[0])
			}
			return writeJSONTo(out, cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVar(&mapFile, "map", "", "YAML map file")
	cmd.Flags().StringVar(&name, "name", "", "Transform name inside the map file")
	cmd.Flags().StringVar(&builtin, "builtin", "", "Built-in map ("+builtinQBOTransaction+")")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "API entity of the records, for built-in maps (e.g. Invoice)")
	cmd.Flags().StringSliceVar(&dedupe, "dedupe", nil, "Keep the first record per unique value of these keys")
	cmd.Flags().StringToStringVar(&props, "prop", nil, "Extra values passed to function accessors (key=value)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file; stdout when empty")
	cmd.MarkFlagsMutuallyExclusive("map", "builtin")
	return cmd
}

func loadTransform(mapFile, name, builtin, endpoint string) (transform.Map, *transform.Options, error) {
	switch {
	case builtin == builtinQBOTransaction:
		return qbo.TransactionExtractMap(), qbo.TransactionExtractOptions(endpoint), nil
	case builtin != "":
		return nil, nil, fmt.Errorf("unknown built-in map %q", builtin)
	case mapFile == "" || name == "":
		return nil, nil, fmt.Errorf("--map and --name are required without --builtin")
	}

	file, err := config.LoadMapFile(mapFile)
	if err != nil {
		return nil, nil, err
	}
	return file.Transform(name)
}
