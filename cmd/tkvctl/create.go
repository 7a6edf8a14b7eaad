package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tablekv/tablekv/table"
)

var (
	createExtents int
	createRecSize int
)

func init() {
	cmd := newCreateCmd()
	cmd.Flags().IntVar(&createExtents, "extents", 64, "Region size in extents (1 MiB each)")
	cmd.Flags().IntVar(&createRecSize, "rec-size", 0, "Advisory record size hint in bytes")
	rootCmd.AddCommand(cmd)
}

func newCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create <table>",
		Short: "Create and format a new table file",
		Long: `The create command maps a new backing file of the requested size and
formats the index region over it.

Example:
  tkvctl create /var/lib/app/cache.tkv --extents 128
  tkvctl create /var/lib/app/sessions.tkv --extents 16 --rec-size 256 --node 1`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(args[0])
		},
	}
}

func runCreate(path string) error {
	reg := newRegistry()
	defer reg.ShutdownAll()

	size := int64(createExtents) * table.ExtentSize
	t, err := reg.Open(path, size, createRecSize, node)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	printInfo("Created table %s (%d extents, %d bytes)\n", t.Path(), createExtents, size)
	return nil
}
