package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/remup-cli/internal/core/domain"
	"github.com/custodia-labs/remup-cli/internal/logger"
)

// annotationArchiveName heads the generated glossary archive.
const annotationArchiveName = "Annotations"

// Linker derives the annotation archive from a parsed document: one
// generated card per origin card that carries at least one annotation,
// back-linked to its origin, plus forward-reference labels on cards
// whose prose mentions an annotated theme. Output is deterministic:
// grouping preserves discovery order and never depends on map
// iteration.
type Linker struct{}

// NewLinker creates a linker.
func NewLinker() *Linker {
	return &Linker{}
}

// annotationGroup collects the annotations of one origin card.
type annotationGroup struct {
	theme       string
	annotations []*domain.Annotation
}

// Link populates doc.AnnotationArchive and injects cross-reference
// labels. Calling it again on the same document is idempotent: the
// archive is rebuilt and label targets are deduplicated per card.
func (l *Linker) Link(doc *domain.Document) *domain.Document {
	groups := l.collect(doc)
	if len(groups) == 0 {
		doc.AnnotationArchive = nil
		return doc
	}

	archive := &domain.Archive{Name: annotationArchiveName}
	for _, g := range groups {
		archive.Cards = append(archive.Cards, l.buildCard(g))
	}
	doc.AnnotationArchive = archive
	logger.Debug("annotation archive: %d cards from %d groups", len(archive.Cards), len(groups))

	l.linkReferences(doc, groups)
	return doc
}

// collect gathers annotations in id order and groups them by origin
// card theme, first occurrence first.
func (l *Linker) collect(doc *domain.Document) []*annotationGroup {
	var groups []*annotationGroup
	index := make(map[string]*annotationGroup)

	for _, archive := range doc.Archives {
		for _, card := range archive.Cards {
			for _, region := range card.Regions {
				for _, ann := range region.Annotations {
					g, ok := index[ann.OriginCardTheme]
					if !ok {
						g = &annotationGroup{theme: ann.OriginCardTheme}
						index[ann.OriginCardTheme] = g
						groups = append(groups, g)
					}
					g.annotations = append(g.annotations, ann)
				}
			}
		}
	}
	return groups
}

// buildCard synthesises one glossary card for a group: the origin
// theme, a back-reference label, and one region per annotation holding
// the note under the annotated span's name.
func (l *Linker) buildCard(g *annotationGroup) *domain.Card {
	card := &domain.Card{
		Theme: g.theme,
		Labels: []*domain.Label{{
			Symbol:  "←",
			Content: []string{"#" + g.theme},
			Kind:    domain.LabelBacklink,
		}},
		Metadata: map[string]string{
			"generated": "annotations",
			"origin":    g.theme,
		},
	}
	for _, ann := range g.annotations {
		region := &domain.Region{
			Name:        ann.Content,
			Content:     ann.Note,
			Lines:       []string{ann.Note},
			Annotations: []*domain.Annotation{ann},
			Asides:      map[int]*domain.Aside{},
		}
		card.Regions = append(card.Regions, region)
	}
	return card
}

// linkReferences appends a forward-reference label to every card whose
// region prose mentions a group theme as a whole word, skipping themes
// already targeted by the card's labels.
func (l *Linker) linkReferences(doc *domain.Document, groups []*annotationGroup) {
	type themeMatch struct {
		theme   string
		pattern *regexp.Regexp
	}
	matchers := make([]themeMatch, 0, len(groups))
	for _, g := range groups {
		matchers = append(matchers, themeMatch{
			theme:   g.theme,
			pattern: wholeWordPattern(g.theme),
		})
	}

	for _, archive := range doc.Archives {
		for _, card := range archive.Cards {
			for _, m := range matchers {
				target := "#" + m.theme
				if card.HasLabelTarget(target) {
					continue
				}
				if !cardMentions(card, m.pattern) {
					continue
				}
				card.Labels = append(card.Labels, &domain.Label{
					Symbol:  "→",
					Content: []string{target},
					Kind:    domain.LabelReference,
				})
			}
		}
	}
}

// cardMentions reports whether any region of the card matches the
// theme pattern.
func cardMentions(card *domain.Card, pattern *regexp.Regexp) bool {
	for _, region := range card.Regions {
		if pattern.MatchString(region.Content) {
			return true
		}
	}
	return false
}

// wholeWordPattern builds a case-insensitive whole-word matcher for a
// theme. \b only understands ASCII word runes, so the boundary guards
// are applied per edge; a CJK theme matches as a plain substring.
func wholeWordPattern(theme string) *regexp.Regexp {
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return regexp.MustCompile(`[^\s\S]`)
	}
	pattern := regexp.QuoteMeta(theme)
	if isASCIIWordRune(rune(theme[0])) {
		pattern = `\b` + pattern
	}
	if isASCIIWordRune(rune(theme[len(theme)-1])) {
		pattern += `\b`
	}
	return regexp.MustCompile(`(?i)` + pattern)
}

func isASCIIWordRune(r rune) bool {
	return r == '_' ||
		(r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z')
}
