package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saturnines/ledger-core/pkg/config"
	"github.com/saturnines/ledger-core/pkg/maps/qbo"
	"github.com/saturnines/ledger-core/pkg/merge"
)

func newMergeCmd(a *app) *cobra.Command {
	var mapFile, name, builtin, out string
	var create bool

	cmd := &cobra.Command{
		Use:   "merge <source.json> [destination.json]",
		Short: "Write a flat record back into a nested destination object",
		Long: `merge writes the values of a flat source record into a copy of the
destination object, as directed by a merge map. Without a destination, or
with --create, missing paths are created and a new object is built.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, opts, err := loadMerge(mapFile, name, builtin)
			if err != nil {
				return err
			}

			source, err := readObject(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}

			var destination map[string]interface{}
			if len(args) == 2 {
				if destination, err = readObject(args[1], cmd.InOrStdin()); err != nil {
					return err
				}
			}
			if create || destination == nil {
				opts.ShouldSet = true
			}
			if err := merge.Validate(m, opts); err != nil {
				return err
			}

			a.dumpValue(cmd.ErrOrStderr(), "source", source)
			a.dumpValue(cmd.ErrOrStderr(), "destination", destination)

			result, err := merge.MergeInto(source, destination, m, nil, opts)
			if err != nil {
				return err
			}
			a.logger.Info("merged record", "keys", len(m), "create", opts.ShouldSet)
			return writeJSONTo(out, cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&mapFile, "map", "", "YAML map file")
	cmd.Flags().StringVar(&name, "name", "", "Merge name inside the map file")
	cmd.Flags().StringVar(&builtin, "builtin", "", "Built-in map ("+builtinQBOTransaction+")")
	cmd.Flags().BoolVar(&create, "create", false, "Create missing destination paths")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file; stdout when empty")
	cmd.MarkFlagsMutuallyExclusive("map", "builtin")
	return cmd
}

func loadMerge(mapFile, name, builtin string) (merge.Map, *merge.Options, error) {
	switch {
	case builtin == builtinQBOTransaction:
		return qbo.TransactionUpdateMap(), &merge.Options{}, nil
	case builtin != "":
		return nil, nil, fmt.Errorf("unknown built-in map %q", builtin)
	case mapFile == "" || name == "":
		return nil, nil, fmt.Errorf("--map and --name are required without --builtin")
	}

	file, err := config.LoadMapFile(mapFile)
	if err != nil {
		return nil, nil, err
	}
	return file.Merge(name)
}
