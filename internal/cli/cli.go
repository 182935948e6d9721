package cli

import (
	"context"
	"io"
	"net/http"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardcomposer/pkg/buildinfo"
	"github.com/matzehuels/cardcomposer/pkg/cache"
	"github.com/matzehuels/cardcomposer/pkg/config"
	"github.com/matzehuels/cardcomposer/pkg/httputil"
	"github.com/matzehuels/cardcomposer/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "cardcomposer"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// The environment configuration is loaded before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Cardcomposer layers images into animated cards",
		Long:         `Cardcomposer composes layered image cards from TOML documents and exports them as JSON or self-contained HTML/CSS.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			c.Config = cfg
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.exportCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.previewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Factories
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.Config.OpenCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(cc, nil, c.Logger)
	r.TTL = c.Config.CacheTTL
	return r, nil
}

// newFetcher creates the fetcher for remote images. Responses are cached on
// disk unless noCache is set or the cache directory is unusable.
func (c *CLI) newFetcher(noCache bool) *httputil.Fetcher {
	opts := []httputil.FetchOption{
		httputil.WithClient(&http.Client{Timeout: c.Config.FetchTimeout}),
		httputil.WithMaxBytes(c.Config.MaxUploadBytes),
		httputil.WithLogger(c.Logger),
	}
	if noCache {
		return httputil.NewFetcher(opts...)
	}
	dir, err := c.remoteCacheDir()
	if err == nil {
		var rc *httputil.Cache
		if rc, err = httputil.NewCache(dir, c.Config.RemoteCacheTTL); err == nil {
			opts = append(opts, httputil.WithCache(rc))
		}
	}
	if err != nil {
		c.Logger.Warn("remote image cache disabled", "err", err)
	}
	return httputil.NewFetcher(opts...)
}

// =============================================================================
// Paths
// =============================================================================

// artifactDir returns the export cache directory.
func (c *CLI) artifactDir() (string, error) {
	if c.Config.CacheDir != "" {
		return c.Config.CacheDir, nil
	}
	return cache.DefaultDir()
}

// remoteCacheDir returns the directory for fetched images, next to the
// artifact directory.
func (c *CLI) remoteCacheDir() (string, error) {
	dir, err := c.artifactDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(dir), "remote"), nil
}
