package domain

import "strings"

// Document is the root of the compiled note tree. Archives keep their
// source order; the annotation archive, when present, is generated by
// the linker and never user-authored.
type Document struct {
	// Title is the page title, supplied by the caller or derived from
	// the source identifier.
	Title string

	// Archives are the user-authored archives in source order.
	Archives []*Archive

	// AnnotationArchive holds the generated glossary cards. Nil when
	// the document has no annotations; downstream renderers must treat
	// absence distinctly from an empty archive.
	AnnotationArchive *Archive
}

// Archive is a top-level named grouping of cards.
type Archive struct {
	// Name is the archive heading.
	Name string

	// Description accumulates comment lines following the header.
	Description string

	// Cards are the archive's cards in source order. An archive never
	// shares a card with another archive.
	Cards []*Card
}

// Card is a themed unit containing labels and regions.
type Card struct {
	// Theme is the display key. Non-empty after trimming; an empty
	// theme is a hard parse error.
	Theme string

	// Labels are the card's labels in source order, plus any
	// cross-reference labels appended by the linker.
	Labels []*Label

	// Regions are the card's named content sections in source order.
	Regions []*Region

	// Annotations mirrors every annotation found in the card's
	// regions, in discovery order.
	Annotations []*Annotation

	// Metadata holds key/value pairs from comment lines after the
	// card start.
	Metadata map[string]string
}

// HasLabelTarget reports whether any label on the card already carries
// the given cross-reference target.
func (c *Card) HasLabelTarget(target string) bool {
	for _, l := range c.Labels {
		for _, item := range l.Content {
			if item == target {
				return true
			}
		}
	}
	return false
}

// LabelKind classifies a label by its symbol.
type LabelKind string

const (
	LabelDefault   LabelKind = "default"
	LabelImportant LabelKind = "important"
	LabelQuestion  LabelKind = "question"
	LabelReference LabelKind = "reference"
	LabelBacklink  LabelKind = "backlink"
	LabelInfo      LabelKind = "info"
	LabelCompleted LabelKind = "completed"
	LabelStar      LabelKind = "star"
	LabelPriority  LabelKind = "priority"
)

// labelKinds maps the fixed symbol set to its kind. Unknown symbols
// fall back to LabelDefault.
var labelKinds = map[string]LabelKind{
	"!": LabelImportant,
	"?": LabelQuestion,
	">": LabelReference,
	"<": LabelBacklink,
	"←": LabelBacklink,
	"→": LabelReference,
	"i": LabelInfo,
	"✓": LabelCompleted,
	"☆": LabelStar,
	"▲": LabelPriority,
}

// KindForSymbol returns the label kind for a symbol.
func KindForSymbol(symbol string) LabelKind {
	if k, ok := labelKinds[symbol]; ok {
		return k
	}
	return LabelDefault
}

// Label is a symbol-tagged list of cross-reference or descriptive
// strings attached to a card. Content entries starting with "#" are
// cross-reference targets (theme names); others are literal text.
type Label struct {
	Symbol  string
	Content []string
	Kind    LabelKind
}

// Region is a named sub-section of a card. It accumulates lines until
// the next region header or card end. Content always equals the lines
// joined by newline once the region is closed.
type Region struct {
	Name string

	// Content is the raw region text.
	Content string

	// Lines is the region text split by source line.
	Lines []string

	// Annotations found within this region, in discovery order.
	Annotations []*Annotation

	// Asides maps a line index (into Lines) to the aside anchored to
	// that line. Lines without an aside have no entry.
	Asides map[int]*Aside

	// Lists are the region's ordered/unordered lists in source order.
	Lists []*List

	// CodeBlocks are the region's fenced code blocks in source order.
	CodeBlocks []*CodeBlock
}

// Close finalises a region, rebuilding Content from the accumulated
// lines.
func (r *Region) Close() {
	r.Content = strings.Join(r.Lines, "\n")
}

// Annotation is an inline annotated span ("vibe card"): a piece of
// text paired with a popover note, auto-extracted into a generated
// glossary card.
type Annotation struct {
	// ID is unique per compilation run and strictly increasing in
	// discovery order. It underlies generated HTML anchors.
	ID int

	// Content is the annotated span text.
	Content string

	// Note is the popover text.
	Note string

	// OriginCardTheme is the theme of the card the span was found in.
	OriginCardTheme string

	// Line is the 1-based source line, or 0 if unknown.
	Line int
}

// Aside is a trailing explanatory note attached to a single source
// line.
type Aside struct {
	// AnchorLine is the index into the owning region's Lines.
	AnchorLine int

	// Text is the aside body.
	Text string
}

// ListKind distinguishes ordered from unordered lists.
type ListKind string

const (
	ListOrdered   ListKind = "ordered"
	ListUnordered ListKind = "unordered"
)

// List is a run of consecutive list items of one kind. A blank line or
// a non-list line ends the run.
type List struct {
	Kind  ListKind
	Items []ListItem
}

// ListItem is a single list entry with its marker stripped. Anchor is
// the index of the item's prose line in the owning region's Lines, or
// -1 when the marker carried no prose.
type ListItem struct {
	Content string
	Line    int
	Anchor  int
}

// CodeBlock is a fenced code block. The body is preserved verbatim;
// nothing inside a fence is structurally interpreted.
type CodeBlock struct {
	Language string
	Content  string
}

// Stats summarises a compiled document.
type Stats struct {
	Archives    int
	Cards       int
	Regions     int
	Labels      int
	Annotations int
}

// CollectStats counts the document's entities, excluding the generated
// annotation archive.
func CollectStats(doc *Document) Stats {
	var s Stats
	s.Archives = len(doc.Archives)
	for _, a := range doc.Archives {
		s.Cards += len(a.Cards)
		for _, c := range a.Cards {
			s.Regions += len(c.Regions)
			s.Labels += len(c.Labels)
			s.Annotations += len(c.Annotations)
		}
	}
	return s
}
