package main

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"

	"github.com/davecgh/go-spew/spew"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// app carries the global flags and the logger built from them
type app struct {
	verbose bool
	dump    bool
	envFile string
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Flatten, transform and merge accounting data",
		Long: `ledgerctl works with the nested JSON an accounting API returns.

  ledgerctl flatten report.json --out table.xlsx
  ledgerctl transform invoices.json --map maps.yaml --name invoice
  ledgerctl merge edited.json original.json --builtin qbo-transaction
  ledgerctl report --job general-ledger.yaml --out gl.json`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&a.dump, "dump", false, "Dump decoded inputs to stderr")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file to load if present")

	root.AddCommand(
		newFlattenCmd(a),
		newTransformCmd(a),
		newMergeCmd(a),
		newReportCmd(a),
	)
	return root
}

func (a *app) init(stderr io.Writer) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if a.envFile == "" {
		return nil
	}
	if err := godotenv.Load(a.envFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			a.logger.Debug("env file not loaded", "path", a.envFile)
			return nil
		}
		return err
	}
	a.logger.Debug("env file loaded", "path", a.envFile)
	return nil
}

// dumpValue writes v to w when --dump is set
func (a *app) dumpValue(w io.Writer, label string, v interface{}) {
	if !a.dump {
		return
	}
	io.WriteString(w, "--- "+label+"\n")
	spew.Fdump(w, v)
}
