package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCacheAll bool

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Drop cached posts and users so the next run refetches them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rt, err := openRuntime(cfg, flags.allowLocal, false)
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.clearCache(clearCacheAll); err != nil {
			return err
		}
		if clearCacheAll {
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared all cached collections")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared cached posts and users for %s\n", rt.label)
		}
		return nil
	},
}

func init() {
	clearCacheCmd.Flags().BoolVar(&clearCacheAll, "all", false, "Clear collections of every source")
}
