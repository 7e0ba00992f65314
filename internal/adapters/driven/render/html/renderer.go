package html

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/custodia-labs/remup-cli/internal/core/domain"
	"github.com/custodia-labs/remup-cli/internal/core/ports/driven"
)

// defaultTheme is used when RenderOptions.Theme is empty.
const defaultTheme = "default"

// Renderer is the embedded-template HTML renderer.
type Renderer struct {
	page   *template.Template
	index  *template.Template
	themes map[string]template.CSS
}

var _ driven.Renderer = (*Renderer)(nil)

// NewRenderer parses the embedded templates and loads every theme.
func NewRenderer() (*Renderer, error) {
	page, err := template.ParseFS(templateFS, "templates/page.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing page template: %w", err)
	}
	index, err := template.ParseFS(templateFS, "templates/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing index template: %w", err)
	}

	themes := map[string]template.CSS{}
	entries, err := fs.ReadDir(themeFS, "themes")
	if err != nil {
		return nil, fmt.Errorf("reading themes: %w", err)
	}
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".css")
		content, err := fs.ReadFile(themeFS, "themes/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("reading theme %s: %w", name, err)
		}
		themes[name] = template.CSS(content)
	}

	return &Renderer{page: page, index: index, themes: themes}, nil
}

// pageData is the page template context.
type pageData struct {
	Title       string
	CSS         template.CSS
	CompiledAt  string
	TotalCards  int
	Archives    []archiveView
	Annotations *archiveView
	LiveReload  bool
	ReloadPort  int
}

type archiveView struct {
	ID          string
	Name        string
	Description string
	Cards       []cardView
}

type cardView struct {
	ID      string
	Theme   string
	Labels  []labelView
	Regions []regionView
}

type labelView struct {
	Symbol string
	Kind   string
	Items  []labelItem
}

// labelItem is one comma-separated label entry. Href is set for
// entries that point at another card.
type labelItem struct {
	Text string
	Href string
}

type regionView struct {
	Name string
	Body template.HTML
}

// Render produces a complete HTML page for the document.
func (r *Renderer) Render(_ context.Context, doc *domain.Document, opts driven.RenderOptions) ([]byte, error) {
	css, err := r.themeCSS(opts.Theme)
	if err != nil {
		return nil, err
	}

	title := opts.Title
	if title == "" {
		title = doc.Title
	}
	if title == "" {
		title = "Notes"
	}

	data := pageData{
		Title:      title,
		CSS:        css,
		CompiledAt: time.Now().Format("2006-01-02 15:04:05"),
		LiveReload: opts.LiveReload,
		ReloadPort: opts.ReloadPort,
	}
	for _, archive := range doc.Archives {
		av := buildArchiveView(archive)
		data.TotalCards += len(av.Cards)
		data.Archives = append(data.Archives, av)
	}
	if doc.AnnotationArchive != nil && len(doc.AnnotationArchive.Cards) > 0 {
		av := buildArchiveView(doc.AnnotationArchive)
		data.TotalCards += len(av.Cards)
		data.Annotations = &av
	}

	var buf bytes.Buffer
	if err := r.page.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering page: %w", err)
	}
	return buf.Bytes(), nil
}

// indexData is the index template context.
type indexData struct {
	Title       string
	CSS         template.CSS
	GeneratedAt string
	Entries     []driven.IndexEntry
}

// RenderIndex produces an index page linking several rendered documents.
func (r *Renderer) RenderIndex(_ context.Context, title string, entries []driven.IndexEntry) ([]byte, error) {
	css, err := r.themeCSS("")
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = "Index"
	}

	data := indexData{
		Title:       title,
		CSS:         css,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Entries:     entries,
	}

	var buf bytes.Buffer
	if err := r.index.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering index: %w", err)
	}
	return buf.Bytes(), nil
}

// Themes lists the available theme names, sorted.
func (r *Renderer) Themes() []string {
	names := make([]string, 0, len(r.themes))
	for name := range r.themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// themeCSS resolves a theme name, defaulting when empty.
func (r *Renderer) themeCSS(name string) (template.CSS, error) {
	if name == "" {
		name = defaultTheme
	}
	css, ok := r.themes[name]
	if !ok {
		return "", fmt.Errorf("theme %q: %w", name, domain.ErrInvalidInput)
	}
	return css, nil
}

// buildArchiveView converts an archive to its template view.
func buildArchiveView(archive *domain.Archive) archiveView {
	av := archiveView{
		ID:          slugify(archive.Name),
		Name:        archive.Name,
		Description: archive.Description,
	}
	for _, card := range archive.Cards {
		av.Cards = append(av.Cards, buildCardView(card))
	}
	return av
}

// buildCardView converts a card to its template view.
func buildCardView(card *domain.Card) cardView {
	cv := cardView{
		ID:    slugify(card.Theme),
		Theme: card.Theme,
	}
	for _, label := range card.Labels {
		lv := labelView{Symbol: label.Symbol, Kind: string(label.Kind)}
		for _, item := range label.Content {
			if target, ok := strings.CutPrefix(item, "#"); ok && target != "" {
				lv.Items = append(lv.Items, labelItem{Text: target, Href: "#card-" + slugify(target)})
			} else {
				lv.Items = append(lv.Items, labelItem{Text: item})
			}
		}
		cv.Labels = append(cv.Labels, lv)
	}
	for _, region := range card.Regions {
		cv.Regions = append(cv.Regions, regionView{
			Name: region.Name,
			Body: regionBody(region),
		})
	}
	return cv
}
