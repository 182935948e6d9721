// Package pkg provides the libraries behind cardcomposer.
//
// # Overview
//
// Cardcomposer builds layered image cards: a background plus a stack of
// positioned images, exported as JSON or as a self-contained HTML/CSS
// snippet with a hover animation. The pkg directory is organized into four
// areas:
//
//  1. Model and state: [composition], [store], [document]
//  2. Layout and rendering: [render/layout], [render/sink], [render/live]
//  3. Orchestration: [pipeline], [session], [ingest]
//  4. Infrastructure: [cache], [config], [httputil], [httpapi], [errors],
//     [observability], [clipboard], [buildinfo]
//
// # Architecture
//
// Every change goes through the store, which owns the composition and
// notifies subscribers after each mutation:
//
//	image bytes / document
//	         ↓
//	    [ingest] (decode, measure, register assets)
//	         ↓
//	    [store] (layers, background, selection, container)
//	         ↓
//	    [render/layout] (alignment → positioning declarations)
//	         ↓
//	    [render/sink] JSON / HTML+CSS     [render/live] preview tree
//
// # Quick Start
//
// Compose a card in memory and export it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/cardcomposer/pkg/composition"
//	    "github.com/matzehuels/cardcomposer/pkg/pipeline"
//	    "github.com/matzehuels/cardcomposer/pkg/store"
//	)
//
//	s := store.New()
//	l := s.AddLayer(composition.Image{Src: "hero.png", Filename: "hero.png", Width: 320, Height: 180})
//	s.UpdateLayer(l.ID, store.LayerUpdate{YAlign: store.Ptr(composition.AlignBottom)})
//
//	result, _ := pipeline.NewRunner(nil, nil, nil).Export(context.Background(), s.State(), pipeline.Options{})
//	html := result.Artifacts[pipeline.FormatHTML]
//
// [composition]: github.com/matzehuels/cardcomposer/pkg/composition
// [store]: github.com/matzehuels/cardcomposer/pkg/store
// [document]: github.com/matzehuels/cardcomposer/pkg/document
// [render/layout]: github.com/matzehuels/cardcomposer/pkg/render/layout
// [render/sink]: github.com/matzehuels/cardcomposer/pkg/render/sink
// [render/live]: github.com/matzehuels/cardcomposer/pkg/render/live
// [pipeline]: github.com/matzehuels/cardcomposer/pkg/pipeline
// [session]: github.com/matzehuels/cardcomposer/pkg/session
// [ingest]: github.com/matzehuels/cardcomposer/pkg/ingest
// [cache]: github.com/matzehuels/cardcomposer/pkg/cache
// [config]: github.com/matzehuels/cardcomposer/pkg/config
// [httputil]: github.com/matzehuels/cardcomposer/pkg/httputil
// [httpapi]: github.com/matzehuels/cardcomposer/pkg/httpapi
// [errors]: github.com/matzehuels/cardcomposer/pkg/errors
// [observability]: github.com/matzehuels/cardcomposer/pkg/observability
// [clipboard]: github.com/matzehuels/cardcomposer/pkg/clipboard
// [buildinfo]: github.com/matzehuels/cardcomposer/pkg/buildinfo
package pkg
