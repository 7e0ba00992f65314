package driven

import (
	"context"

	"github.com/custodia-labs/remup-cli/internal/core/domain"
)

// RenderOptions control a single render.
type RenderOptions struct {
	// Title overrides the document title when non-empty.
	Title string

	// Theme names a CSS theme. Empty means the renderer default.
	Theme string

	// LiveReload injects the preview websocket client when true.
	LiveReload bool

	// ReloadPort is the websocket port the client connects to.
	ReloadPort int
}

// IndexEntry is one document on a generated index page.
type IndexEntry struct {
	// Title is the display name.
	Title string

	// Href is the relative link to the rendered page.
	Href string

	// Stats summarises the document.
	Stats domain.Stats
}

// Renderer turns a compiled document into standalone HTML.
// The core never renders; it hands the document across this port.
type Renderer interface {
	// Render produces a complete HTML page for the document.
	Render(ctx context.Context, doc *domain.Document, opts RenderOptions) ([]byte, error)

	// RenderIndex produces an index page linking several rendered
	// documents. Used by directory builds.
	RenderIndex(ctx context.Context, title string, entries []IndexEntry) ([]byte, error)

	// Themes lists the available theme names.
	Themes() []string
}
