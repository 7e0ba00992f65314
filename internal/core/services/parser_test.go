package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/remup-cli/internal/core/domain"
)

// parseSource runs lexer and parser over a source text.
func parseSource(t *testing.T, source string) (*domain.Document, []domain.Warning) {
	t.Helper()
	doc, warnings, err := NewParser().Parse(NewLexer().Tokenize(source))
	require.NoError(t, err)
	require.NotNil(t, doc)
	return doc, warnings
}

// TestParser_MinimalDocument builds the smallest valid tree.
func TestParser_MinimalDocument(t *testing.T) {
	source := "--<Demo>--\n" +
		"<+Greeting\n" +
		"---Body\n" +
		"Hello `world`[a common greeting target] >>note for readers\n" +
		"/+>"

	doc, warnings := parseSource(t, source)
	assert.Empty(t, warnings)

	require.Len(t, doc.Archives, 1)
	archive := doc.Archives[0]
	assert.Equal(t, "Demo", archive.Name)

	require.Len(t, archive.Cards, 1)
	card := archive.Cards[0]
	assert.Equal(t, "Greeting", card.Theme)

	require.Len(t, card.Regions, 1)
	region := card.Regions[0]
	assert.Equal(t, "Body", region.Name)
	require.Len(t, region.Lines, 1)
	assert.Equal(t, "Hello __world__", region.Lines[0])

	require.Len(t, region.Annotations, 1)
	ann := region.Annotations[0]
	assert.Equal(t, "world", ann.Content)
	assert.Equal(t, "a common greeting target", ann.Note)
	assert.Equal(t, "Greeting", ann.OriginCardTheme)
	assert.Equal(t, 4, ann.Line)

	aside, ok := region.Asides[0]
	require.True(t, ok, "aside anchored to the first region line")
	assert.Equal(t, "note for readers", aside.Text)

	// Annotations mirror into the card.
	require.Len(t, card.Annotations, 1)
	assert.Same(t, ann, card.Annotations[0])
}

// TestParser_EmptyThemeRejected is the only hard parse error.
func TestParser_EmptyThemeRejected(t *testing.T) {
	_, _, err := NewParser().Parse(NewLexer().Tokenize("<+   \n/+>"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyTheme)

	var parseErr *domain.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 1, parseErr.Line)
}

// TestParser_LabelOutsideCard warns and drops the label.
func TestParser_LabelOutsideCard(t *testing.T) {
	doc, warnings := parseSource(t, "(!: orphan)\n--<A>--\n<+x\n---r\ntext\n/+>")

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "label outside a card")
	assert.Equal(t, 1, warnings[0].Line)

	for _, archive := range doc.Archives {
		for _, card := range archive.Cards {
			assert.Empty(t, card.Labels)
		}
	}
}

// TestParser_RegionOutsideCard warns and drops the region.
func TestParser_RegionOutsideCard(t *testing.T) {
	doc, warnings := parseSource(t, "--<A>--\n---stray\n<+x\n---kept\nbody\n/+>")

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Message, "region")

	require.Len(t, doc.Archives, 1)
	require.Len(t, doc.Archives[0].Cards, 1)
	require.Len(t, doc.Archives[0].Cards[0].Regions, 1)
	assert.Equal(t, "kept", doc.Archives[0].Cards[0].Regions[0].Name)
}

// TestParser_DefaultArchive synthesizes an archive when a card appears
// before any archive header.
func TestParser_DefaultArchive(t *testing.T) {
	doc, warnings := parseSource(t, "<+orphan\n---r\nbody\n/+>")

	require.Len(t, doc.Archives, 1)
	assert.Equal(t, "Default", doc.Archives[0].Name)
	require.Len(t, doc.Archives[0].Cards, 1)
	assert.Equal(t, "orphan", doc.Archives[0].Cards[0].Theme)
	require.NotEmpty(t, warnings)
}

// TestParser_MissingTerminatorRecovery keeps an unterminated card and
// its accumulated regions.
func TestParser_MissingTerminatorRecovery(t *testing.T) {
	doc, _ := parseSource(t, "--<A>--\n<+Theme\n---r\nline one\nline two")

	require.Len(t, doc.Archives, 1)
	require.Len(t, doc.Archives[0].Cards, 1)
	card := doc.Archives[0].Cards[0]
	assert.Equal(t, "Theme", card.Theme)
	require.Len(t, card.Regions, 1)
	assert.Equal(t, []string{"line one", "line two"}, card.Regions[0].Lines)
	assert.Equal(t, "line one\nline two", card.Regions[0].Content)
}

// TestParser_RegionRoundTrip holds content == join(lines) after close.
func TestParser_RegionRoundTrip(t *testing.T) {
	source := "--<A>--\n<+x\n---r\nfirst\nsecond `s`[n]\n```go\na := 1\n```\n---next\nother\n/+>"
	doc, _ := parseSource(t, source)

	for _, archive := range doc.Archives {
		for _, card := range archive.Cards {
			for _, region := range card.Regions {
				assert.Equal(t, strings.Join(region.Lines, "\n"), region.Content,
					"region %q", region.Name)
			}
		}
	}
}

// TestParser_CardsNeverShared verifies no card object appears in two
// archives.
func TestParser_CardsNeverShared(t *testing.T) {
	doc, _ := parseSource(t, "--<A>--\n<+a1\n---r\nx\n/+>\n--<B>--\n<+b1\n---r\ny\n/+>")

	seen := map[*domain.Card]string{}
	for _, archive := range doc.Archives {
		for _, card := range archive.Cards {
			prev, dup := seen[card]
			require.False(t, dup, "card %q in both %q and %q", card.Theme, prev, archive.Name)
			seen[card] = archive.Name
		}
	}
}

// TestParser_AnnotationIDsMonotonic requires strictly increasing ids
// in discovery order, across cards and archives.
func TestParser_AnnotationIDsMonotonic(t *testing.T) {
	source := "--<A>--\n" +
		"<+one\n---r\n`a`[1] and `b`[2]\n/+>\n" +
		"<+two\n---r\n`c`[3]\n---s\n`d`[4]\n/+>"
	doc, _ := parseSource(t, source)

	var ids []int
	for _, archive := range doc.Archives {
		for _, card := range archive.Cards {
			for _, ann := range card.Annotations {
				ids = append(ids, ann.ID)
			}
		}
	}
	require.Len(t, ids, 4)
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i], ids[i-1])
	}
}

// TestParser_EmptyArchiveRetained keeps archives even with zero cards.
func TestParser_EmptyArchiveRetained(t *testing.T) {
	doc, _ := parseSource(t, "--<Empty>--\n--<Full>--\n<+x\n---r\nbody\n/+>")

	require.Len(t, doc.Archives, 2)
	assert.Equal(t, "Empty", doc.Archives[0].Name)
	assert.Empty(t, doc.Archives[0].Cards)
	assert.Equal(t, "Full", doc.Archives[1].Name)
}

// TestParser_RegionlessCardWarns warns but keeps the card.
func TestParser_RegionlessCardWarns(t *testing.T) {
	doc, warnings := parseSource(t, "--<A>--\n<+bare\n/+>")

	require.Len(t, doc.Archives, 1)
	require.Len(t, doc.Archives[0].Cards, 1)

	found := false
	for _, w := range warnings {
		if strings.Contains(w.Message, "no regions") {
			found = true
		}
	}
	assert.True(t, found, "expected a no-regions warning, got %v", warnings)
}

// TestParser_Lists groups consecutive items and splits on blank lines
// and kind changes.
func TestParser_Lists(t *testing.T) {
	source := "--<A>--\n<+x\n---r\n" +
		"- one\n- two\n" +
		"1. first\n2. second\n" +
		"\n" +
		"- separate\n" +
		"/+>"
	doc, _ := parseSource(t, source)

	region := doc.Archives[0].Cards[0].Regions[0]
	require.Len(t, region.Lists, 3)

	assert.Equal(t, domain.ListUnordered, region.Lists[0].Kind)
	assert.Len(t, region.Lists[0].Items, 2)
	assert.Equal(t, "one", region.Lists[0].Items[0].Content)

	assert.Equal(t, domain.ListOrdered, region.Lists[1].Kind)
	assert.Len(t, region.Lists[1].Items, 2)

	assert.Equal(t, domain.ListUnordered, region.Lists[2].Kind)
	assert.Len(t, region.Lists[2].Items, 1)
}

// TestParser_CodeBlocks attach to the open region with fences
// preserved in the line stream.
func TestParser_CodeBlocks(t *testing.T) {
	source := "--<A>--\n<+x\n---r\nintro\n```python\nprint(1)\n```\n/+>"
	doc, _ := parseSource(t, source)

	region := doc.Archives[0].Cards[0].Regions[0]
	require.Len(t, region.CodeBlocks, 1)
	assert.Equal(t, "python", region.CodeBlocks[0].Language)
	assert.Equal(t, "print(1)", region.CodeBlocks[0].Content)
	assert.Equal(t, []string{"intro", "```python", "print(1)", "```"}, region.Lines)
}

// TestParser_ArchiveDescription captures comment lines after the
// header.
func TestParser_ArchiveDescription(t *testing.T) {
	doc, _ := parseSource(t, "--<A>--\n# study notes\n# spring term\n<+x\n---r\nbody\n/+>")

	assert.Equal(t, "study notes spring term", doc.Archives[0].Description)
}

// TestParser_CardMetadata captures key: value comments after the card
// start.
func TestParser_CardMetadata(t *testing.T) {
	doc, _ := parseSource(t, "--<A>--\n<+x\n# level: advanced\n---r\nbody\n/+>")

	card := doc.Archives[0].Cards[0]
	assert.Equal(t, "advanced", card.Metadata["level"])
}

// TestParser_LabelKinds maps symbols to kinds with a default fallback.
func TestParser_LabelKinds(t *testing.T) {
	doc, _ := parseSource(t, "--<A>--\n<+x\n(!: vital)\n(?: open question)\n(z: unknown)\n---r\nbody\n/+>")

	labels := doc.Archives[0].Cards[0].Labels
	require.Len(t, labels, 3)
	assert.Equal(t, domain.LabelImportant, labels[0].Kind)
	assert.Equal(t, domain.LabelQuestion, labels[1].Kind)
	assert.Equal(t, domain.LabelDefault, labels[2].Kind)
}

// TestParser_ParseErrorUnwraps supports errors.Is and errors.As at the
// CLI boundary.
func TestParser_ParseErrorUnwraps(t *testing.T) {
	err := domain.NewParseError(7, domain.ErrEmptyTheme)

	assert.True(t, errors.Is(err, domain.ErrEmptyTheme))
	assert.Equal(t, "line 7: card theme is empty", err.Error())
}
