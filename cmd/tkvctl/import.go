package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var importWorkers int

func init() {
	cmd := newImportCmd()
	cmd.Flags().IntVar(&importWorkers, "workers", 4, "Concurrent insert workers")
	rootCmd.AddCommand(cmd)
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <table> <in.tkvs.lz4>",
		Short: "Replay a snapshot stream into a table",
		Long: `The import command reads an lz4-compressed snapshot produced by export
and inserts every record into the target table. Records are inserted
concurrently; chain order within a key is not preserved.

Example:
  tkvctl import /var/lib/app/new.tkv cache.tkvs.lz4 --workers 8`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(args[0], args[1])
		},
	}
}

func runImport(path, inPath string) error {
	reg := newRegistry()
	defer reg.ShutdownAll()

	t, err := openExisting(reg, path)
	if err != nil {
		return err
	}

	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer in.Close()

	sr, err := newSnapshotReader(lz4.NewReader(in))
	if err != nil {
		return err
	}

	entries := make(chan snapshotEntry, importWorkers)
	// The producer must never block on a channel no worker drains anymore:
	// the group context cancels the send once the first worker fails.
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < importWorkers; i++ {
		g.Go(func() error {
			for e := range entries {
				rec, err := t.CreateRecord(e.Key, e.Data)
				if err != nil {
					return err
				}
				t.Release(rec)
			}
			return nil
		})
	}

	n := 0
	var readErr error
produce:
	for {
		e, err := sr.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}
		select {
		case entries <- e:
			n++
		case <-ctx.Done():
			break produce
		}
	}
	close(entries)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	if readErr != nil {
		return fmt.Errorf("import failed: %w", readErr)
	}

	printInfo("Imported %d records into %s\n", n, t.Path())
	return nil
}
