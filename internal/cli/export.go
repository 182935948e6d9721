package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardcomposer/pkg/clipboard"
	"github.com/matzehuels/cardcomposer/pkg/errors"
	"github.com/matzehuels/cardcomposer/pkg/pipeline"
)

// stdoutPath selects standard output for --output.
const stdoutPath = "-"

// exportOpts holds the command-line flags for the export command.
type exportOpts struct {
	output      string   // output file (single format), base path, or "-"
	formats     []string // json, html
	classPrefix string   // CSS class prefix of the HTML export
	minHeight   int      // min-height of the HTML container
	compact     bool     // JSON without indentation
	copy        bool     // copy the artifact to the clipboard
	noCache     bool
	refresh     bool
}

func (c *CLI) exportCommand() *cobra.Command {
	var formatsStr string
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [document.toml]",
		Short: "Export a card document to JSON and HTML/CSS",
		Long: `Export loads a card document, resolves every layer and writes the
requested artifacts. By default both formats are written next to the
document; with a single format, --output names the file or "-" for stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats, err := pipeline.ParseFormats(formatsStr)
			if err != nil {
				return err
			}
			if len(formats) == 0 {
				formats = pipeline.DefaultFormats
			}
			opts.formats = formats
			if opts.classPrefix == "" {
				opts.classPrefix = c.Config.ClassPrefix
			}
			return c.runExport(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", `output file (single format), base path (multiple), or "-" for stdout`)
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "json,html", "export format(s): json, html (comma-separated)")
	cmd.Flags().StringVar(&opts.classPrefix, "class-prefix", "", "CSS class prefix of the HTML export")
	cmd.Flags().IntVar(&opts.minHeight, "min-height", 0, "min-height of the HTML container in pixels")
	cmd.Flags().BoolVar(&opts.compact, "compact", false, "write JSON without indentation")
	cmd.Flags().BoolVar(&opts.copy, "copy", false, "copy the exported markup to the clipboard")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the image and artifact caches")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "re-render even when cached")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, input string, opts exportOpts, stdout io.Writer) error {
	logger := loggerFromContext(ctx)
	toStdout := opts.output == stdoutPath
	if toStdout && len(opts.formats) != 1 {
		return errors.New(errors.ErrCodeInvalidInput, "--output - needs exactly one format, got %s", strings.Join(opts.formats, ","))
	}

	sess, _, err := c.loadSession(ctx, input, opts.noCache)
	if err != nil {
		return err
	}
	defer sess.Close()

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Formats:     opts.formats,
		ClassPrefix: opts.classPrefix,
		MinHeight:   opts.minHeight,
		Refresh:     opts.refresh,
		Logger:      logger,
	}
	if opts.compact {
		none := ""
		popts.Indent = &none
	}

	prog := newProgress(logger)
	res, err := runner.Export(ctx, sess.Store.State(), popts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Exported %d layers", res.Stats.LayerCount))

	if toStdout {
		_, err := stdout.Write(res.Artifacts[opts.formats[0]])
		return err
	}

	paths := outputPaths(opts.output, input, opts.formats)
	for _, format := range opts.formats {
		if err := os.WriteFile(paths[format], res.Artifacts[format], 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", paths[format])
		}
	}

	printSuccess("Exported %s", filepath.Base(input))
	for _, format := range opts.formats {
		printFile(paths[format])
	}
	fmt.Println(statsLine(res.Stats.LayerCount, opts.formats, res.CacheInfo.RenderHit))

	if opts.copy {
		copyArtifact(res, opts.formats)
	}
	return nil
}

// copyArtifact puts the HTML export on the clipboard, or the only format
// exported.
func copyArtifact(res *pipeline.Result, formats []string) {
	format := formats[0]
	if _, ok := res.Artifacts[pipeline.FormatHTML]; ok {
		format = pipeline.FormatHTML
	}
	if clipboard.Copy(os.Stdout, string(res.Artifacts[format])) {
		printInfo("Copied %s to clipboard", format)
		return
	}
	printWarning("Clipboard needs a terminal; nothing copied")
}

// outputPaths maps each format to its file. A single format writes output
// as given; several formats append their extension to the base path.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}

// basePath strips the extension of input when output is empty, and a known
// format extension from output otherwise.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
