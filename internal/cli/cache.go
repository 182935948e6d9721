package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardcomposer/pkg/cache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the export and image caches",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove cached exports and fetched images",
		RunE: func(cmd *cobra.Command, args []string) error {
			artifacts, err := c.clearArtifacts(cmd.Context())
			if err != nil {
				return fmt.Errorf("clear artifacts: %w", err)
			}
			remote, err := c.clearRemote()
			if err != nil {
				return fmt.Errorf("clear fetched images: %w", err)
			}
			printSuccess("Cleared %d exports and %d fetched images", artifacts, remote)
			return nil
		},
	}
}

// clearArtifacts empties the artifact cache the configuration selects.
func (c *CLI) clearArtifacts(ctx context.Context) (int, error) {
	if c.Config.UseRedis() {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.RedisAddr,
			Password: c.Config.RedisPassword,
			DB:       c.Config.RedisDB,
		})
		if err != nil {
			return 0, err
		}
		defer rc.Close()
		printDetail("Redis: %s", c.Config.RedisAddr)
		return rc.Clear(ctx)
	}

	dir, err := c.artifactDir()
	if err != nil {
		return 0, err
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return 0, err
	}
	printDetail("Directory: %s", dir)
	return fc.Clear()
}

// clearRemote removes the fetched image cache and returns how many files it
// held.
func (c *CLI) clearRemote() (int, error) {
	dir, err := c.remoteCacheDir()
	if err != nil {
		return 0, err
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if err := os.RemoveAll(dir); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.printCachePaths(cmd.OutOrStdout())
		},
	}
}

func (c *CLI) printCachePaths(w io.Writer) error {
	if c.Config.UseRedis() {
		fmt.Fprintf(w, "artifacts redis://%s/%d\n", c.Config.RedisAddr, c.Config.RedisDB)
	} else {
		dir, err := c.artifactDir()
		if err != nil {
			return fmt.Errorf("get cache dir: %w", err)
		}
		fmt.Fprintf(w, "artifacts %s\n", dir)
	}
	dir, err := c.remoteCacheDir()
	if err != nil {
		return fmt.Errorf("get cache dir: %w", err)
	}
	fmt.Fprintf(w, "images    %s\n", dir)
	return nil
}
