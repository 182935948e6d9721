package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/matzehuels/cardcomposer/pkg/document"
	"github.com/matzehuels/cardcomposer/pkg/ingest"
	"github.com/matzehuels/cardcomposer/pkg/session"
)

// loadSession reads the document at path and applies it to a fresh
// session. The caller closes the session.
func (c *CLI) loadSession(ctx context.Context, path string, noCache bool) (*session.Session, *document.Document, error) {
	logger := loggerFromContext(ctx)

	doc, err := document.Load(path)
	if err != nil {
		return nil, nil, err
	}
	sess := c.newSession(ctx, noCache)

	prog := newProgress(logger)
	spin := newSpinner(ctx, fmt.Sprintf("Loading %d images...", len(doc.Sources())))
	spin.Start()
	if err := doc.Apply(ctx, sess.Store, sess.Loader); err != nil {
		if spin.Cancelled() {
			spin.Stop()
		} else {
			spin.StopWithError("Loading " + filepath.Base(path) + " failed")
		}
		sess.Close()
		return nil, nil, err
	}
	spin.Stop()
	prog.done(fmt.Sprintf("Loaded %s: %d layers", filepath.Base(path), len(doc.Layers)))
	return sess, doc, nil
}

// newSession creates an empty session whose loader uses the configured
// fetcher and size limit.
func (c *CLI) newSession(ctx context.Context, noCache bool) *session.Session {
	return session.New(
		session.WithLogger(loggerFromContext(ctx)),
		session.WithLoaderOptions(
			ingest.WithFetcher(c.newFetcher(noCache)),
			ingest.WithMaxBytes(c.Config.MaxUploadBytes),
		),
	)
}
