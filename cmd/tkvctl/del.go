package main

import (
	"github.com/spf13/cobra"
)

var delForce bool

func init() {
	cmd := newDelCmd()
	cmd.Flags().BoolVar(&delForce, "force", false, "Also remove records still under construction")
	rootCmd.AddCommand(cmd)
}

func newDelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "del <table> <key>",
		Short: "Remove all records under a key",
		Long: `The del command unlinks every published record stored under the key.
Removing a missing key is a no-op. With --force, records still under
construction are removed as well.

Example:
  tkvctl del /var/lib/app/cache.tkv 0xABC`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDel(args)
		},
	}
}

func runDel(args []string) error {
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
	t.RemoveRecords(key, nil, delForce)
	printInfo("Removed records under key %#x\n", key)
	return nil
}
