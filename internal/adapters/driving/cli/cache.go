package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the build cache",
	Long:  `List or clear cached build records. Cached sources whose content is unchanged are skipped by compile unless --force is given.`,
	RunE:  runCacheList,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached builds",
	RunE:  runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached builds",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	if buildStore == nil {
		return errors.New("build cache not configured")
	}

	records, err := buildStore.List(context.Background())
	if err != nil {
		return err
	}
	if len(records) == 0 {
		cmd.Println("build cache is empty")
		return nil
	}

	for _, rec := range records {
		cmd.Printf("%s\n", rec.SourcePath)
		cmd.Printf("  output:   %s\n", rec.OutputPath)
		cmd.Printf("  compiled: %s\n", rec.CompiledAt.Format("2006-01-02 15:04:05"))
		cmd.Printf("  stats:    %s\n", formatStats(rec.Stats))
		if rec.Warnings > 0 {
			cmd.Printf("  warnings: %d\n", rec.Warnings)
		}
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	if buildStore == nil {
		return errors.New("build cache not configured")
	}

	if err := buildStore.Clear(context.Background()); err != nil {
		return err
	}
	cmd.Println("build cache cleared")
	return nil
}
