package main

import (
	"fmt"
	"os"

	"github.com/pierrec/lz4/v4"
	"github.com/spf13/cobra"

	"github.com/tablekv/tablekv/table"
)

func init() {
	rootCmd.AddCommand(newExportCmd())
}

func newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <table> <out.tkvs.lz4>",
		Short: "Export all records to a compressed snapshot stream",
		Long: `The export command walks the table and writes every published record
to an lz4-compressed snapshot file that import can replay into another table.

Example:
  tkvctl export /var/lib/app/cache.tkv cache.tkvs.lz4`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(args[0], args[1])
		},
	}
}

func runExport(path, outPath string) error {
	reg := newRegistry()
	defer reg.ShutdownAll()

	t, err := openExisting(reg, path)
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer out.Close()

	zw := lz4.NewWriter(out)
	sw, err := newSnapshotWriter(zw)
	if err != nil {
		return err
	}

	n := 0
	err = t.Walk(func(rec *table.Record) error {
		n++
		return sw.write(snapshotEntry{Key: rec.Key(), Data: recordBytes(rec)})
	})
	if err != nil {
		return fmt.Errorf("export walk failed: %w", err)
	}
	if err := sw.flush(); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	printInfo("Exported %d records to %s\n", n, outPath)
	return nil
}
