package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardcomposer/pkg/errors"
	"github.com/matzehuels/cardcomposer/pkg/httpapi"
	"github.com/matzehuels/cardcomposer/pkg/session"
)

// Server timeouts.
const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

type serveOpts struct {
	addr    string
	doc     string // optional document to preload
	noCache bool
}

func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a composition session over HTTP",
		Long: `Serve exposes one composition session as a JSON API with a live preview
page. With --doc the session starts from a card document.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.addr == "" {
				opts.addr = c.Config.ListenAddr
			}
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from CARDCOMPOSER_LISTEN_ADDR)")
	cmd.Flags().StringVar(&opts.doc, "doc", "", "card document to load into the session")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the image and artifact caches")
	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	var sess *session.Session
	if opts.doc != "" {
		s, _, err := c.loadSession(ctx, opts.doc, opts.noCache)
		if err != nil {
			return err
		}
		sess = s
	} else {
		sess = c.newSession(ctx, opts.noCache)
	}
	defer sess.Close()

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	ln, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "listen on %s", opts.addr)
	}
	srv := &http.Server{
		Handler:           httpapi.New(sess, runner, logger, httpapi.WithMaxUploadBytes(c.Config.MaxUploadBytes)),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	printSuccess("Serving session %s", sess.ID[:8])
	printKeyValue("api", fmt.Sprintf("http://%s/state", ln.Addr()))
	printKeyValue("preview", fmt.Sprintf("http://%s/preview", ln.Addr()))
	return serve(ctx, srv, ln)
}

// serve runs srv on ln until ctx ends, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, ln net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if err == http.ErrServerClosed {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
