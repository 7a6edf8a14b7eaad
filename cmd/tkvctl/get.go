package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newGetCmd())
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <key>",
		Short: "Look up all records under a key",
		Long: `The get command walks the exact-key collision chain and prints every
published record stored under the key.

Example:
  tkvctl get /var/lib/app/cache.tkv 0xABC
  tkvctl get /var/lib/app/cache.tkv 42 --json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(args)
		},
	}
}

type recordOut struct {
	Key   string `json:"key"`
	Len   int    `json:"len"`
	Value string `json:"value"`
}

func runGet(args []string) error {
	key, err := parseKey(args[1])
	if err != nil {
		return err
	}

	reg := newRegistry()
	defer reg.ShutdownAll()

	t, err := openExisting(reg, args[0])
	if err != nil {
		return err
	}

	var out []recordOut
	for it := t.Get(key); it.Valid(); it.Next() {
		data := recordBytes(it.Record())
		out = append(out, recordOut{
			Key:   fmt.Sprintf("%#x", key),
			Len:   len(data),
			Value: preview(data, 256),
		})
	}
	if len(out) == 0 {
		return fmt.Errorf("no record under key %#x", key)
	}
	if jsonOut {
		return printJSON(out)
	}
	for _, r := range out {
		printInfo("%s  %d bytes  %s\n", r.Key, r.Len, r.Value)
	}
	return nil
}
