package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the review cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear all cached review results",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			fail(cmd, ExitConfigError, err)
			return nil
		}
		cfg.Cache.Enabled = true
		c, err := openCache(cfg)
		if err != nil {
			fail(cmd, ExitRuntimeError, err)
			return nil
		}
		defer c.Close()
		if err := c.Clear(); err != nil {
			fail(cmd, ExitRuntimeError, fmt.Errorf("clearing cache: %w", err))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
		return nil
	},
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Context())
		if err != nil {
			fail(cmd, ExitConfigError, err)
			return nil
		}
		c, err := openCache(cfg)
		if err != nil {
			fail(cmd, ExitRuntimeError, err)
			return nil
		}
		defer c.Close()
		if !c.Enabled() {
			fmt.Fprintln(cmd.OutOrStdout(), "Cache is disabled.")
			return nil
		}
		stats, err := c.GetStats()
		if err != nil {
			fail(cmd, ExitRuntimeError, fmt.Errorf("reading cache stats: %w", err))
			return nil
		}
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheShowCmd)
}
