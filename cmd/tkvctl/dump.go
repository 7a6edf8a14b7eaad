package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tablekv/tablekv/table"
)

func init() {
	rootCmd.AddCommand(newDumpCmd())
}

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump <table>",
		Short: "Print every published record in a table",
		Long: `The dump command walks the whole table and prints each record.

Example:
  tkvctl dump /var/lib/app/cache.tkv
  tkvctl dump /var/lib/app/cache.tkv --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args[0])
		},
	}
}

func runDump(path string) error {
	reg := newRegistry()
	defer reg.ShutdownAll()

	t, err := openExisting(reg, path)
	if err != nil {
		return err
	}

	var out []recordOut
	err = t.Walk(func(rec *table.Record) error {
		data := recordBytes(rec)
		out = append(out, recordOut{
			Key:   fmt.Sprintf("%#x", rec.Key()),
			Len:   len(data),
			Value: preview(data, 64),
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk failed: %w", err)
	}
	if jsonOut {
		return printJSON(out)
	}
	for _, r := range out {
		printInfo("%s  %d bytes  %s\n", r.Key, r.Len, r.Value)
	}
	printInfo("%d records\n", len(out))
	return nil
}
