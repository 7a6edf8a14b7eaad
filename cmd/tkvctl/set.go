package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

var setHex bool

func init() {
	cmd := newSetCmd()
	cmd.Flags().BoolVar(&setHex, "hex", false, "Interpret the value as hex-encoded bytes")
	rootCmd.AddCommand(cmd)
}

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <table> <key> <value>",
		Short: "Store a record under a key",
		Long: `The set command creates a complete record under the given 64-bit key.
Existing records under the key are left in place; the new record joins the
same collision chain.

Example:
  tkvctl set /var/lib/app/cache.tkv 0xABC "hello"
  tkvctl set /var/lib/app/cache.tkv 42 0102030405 --hex`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSet(args)
		},
	}
}

func runSet(args []string) error {
	key, err := parseKey(args[1])
	if err != nil {
		return err
	}
	data := []byte(args[2])
	if setHex {
		if data, err = hex.DecodeString(args[2]); err != nil {
			return fmt.Errorf("bad hex value: %w", err)
		}
	}

	reg := newRegistry()
	defer reg.ShutdownAll()

	t, err := openExisting(reg, args[0])
	if err != nil {
		return err
	}
	rec, err := t.CreateRecord(key, data)
	if err != nil {
		return fmt.Errorf("failed to store record: %w", err)
	}
	t.Release(rec)

	printInfo("Stored %d bytes under key %#x\n", len(data), key)
	return nil
}
