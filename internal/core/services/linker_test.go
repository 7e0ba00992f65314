package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/remup-cli/internal/core/domain"
)

// linkSource runs the full tokenize/parse/link chain.
func linkSource(t *testing.T, source string) *domain.Document {
	t.Helper()
	doc, _, err := NewParser().Parse(NewLexer().Tokenize(source))
	require.NoError(t, err)
	return NewLinker().Link(doc)
}

// TestLinker_MinimalDocument generates one glossary card back-linked
// to its origin.
func TestLinker_MinimalDocument(t *testing.T) {
	doc := linkSource(t, "--<Demo>--\n<+Greeting\n---Body\nHello `world`[a common greeting target] >>note for readers\n/+>")

	require.NotNil(t, doc.AnnotationArchive)
	require.Len(t, doc.AnnotationArchive.Cards, 1)

	card := doc.AnnotationArchive.Cards[0]
	assert.Equal(t, "Greeting", card.Theme)

	require.NotEmpty(t, card.Labels)
	back := card.Labels[0]
	assert.Equal(t, "←", back.Symbol)
	assert.Equal(t, domain.LabelBacklink, back.Kind)
	assert.Equal(t, []string{"#Greeting"}, back.Content)

	require.Len(t, card.Regions, 1)
	assert.Equal(t, "world", card.Regions[0].Name)
	assert.Equal(t, "a common greeting target", card.Regions[0].Content)
}

// TestLinker_NoAnnotations leaves the archive unset, not empty.
func TestLinker_NoAnnotations(t *testing.T) {
	doc := linkSource(t, "--<A>--\n<+x\n---r\nplain prose only\n/+>")

	assert.Nil(t, doc.AnnotationArchive)
}

// TestLinker_GroupsPerOriginCard produces one generated card per
// origin card, preserving discovery order.
func TestLinker_GroupsPerOriginCard(t *testing.T) {
	source := "--<A>--\n" +
		"<+first\n---r\n`a`[1] then `b`[2]\n/+>\n" +
		"<+second\n---r\n`c`[3]\n/+>"
	doc := linkSource(t, source)

	require.NotNil(t, doc.AnnotationArchive)
	require.Len(t, doc.AnnotationArchive.Cards, 2)

	assert.Equal(t, "first", doc.AnnotationArchive.Cards[0].Theme)
	assert.Len(t, doc.AnnotationArchive.Cards[0].Regions, 2)
	assert.Equal(t, "second", doc.AnnotationArchive.Cards[1].Theme)
	assert.Len(t, doc.AnnotationArchive.Cards[1].Regions, 1)
}

// TestLinker_ForwardReferences adds a → label to cards whose prose
// mentions an annotated theme as a whole word.
func TestLinker_ForwardReferences(t *testing.T) {
	source := "--<A>--\n" +
		"<+vigilant\n---r\n`alert`[watchful]\n/+>\n" +
		"<+essay\n---r\nStay vigilant at night.\n/+>"
	doc := linkSource(t, source)

	essay := doc.Archives[0].Cards[1]
	require.Equal(t, "essay", essay.Theme)

	var forward *domain.Label
	for _, l := range essay.Labels {
		if l.Symbol == "→" {
			forward = l
		}
	}
	require.NotNil(t, forward, "essay should reference #vigilant")
	assert.Equal(t, []string{"#vigilant"}, forward.Content)
	assert.Equal(t, domain.LabelReference, forward.Kind)
}

// TestLinker_ForwardReferenceWholeWord does not match substrings.
func TestLinker_ForwardReferenceWholeWord(t *testing.T) {
	source := "--<A>--\n" +
		"<+art\n---r\n`x`[y]\n/+>\n" +
		"<+other\n---r\nThe word artful contains it but should not match.\n/+>"
	doc := linkSource(t, source)

	other := doc.Archives[0].Cards[1]
	for _, l := range other.Labels {
		assert.NotEqual(t, "→", l.Symbol, "substring must not produce a reference")
	}
}

// TestLinker_Idempotent re-links without duplicating labels or
// generated cards.
func TestLinker_Idempotent(t *testing.T) {
	source := "--<A>--\n" +
		"<+vigilant\n---r\n`alert`[watchful]\n/+>\n" +
		"<+essay\n---r\nStay vigilant.\n/+>"
	doc := linkSource(t, source)

	linker := NewLinker()
	doc = linker.Link(doc)
	doc = linker.Link(doc)

	require.Len(t, doc.AnnotationArchive.Cards, 1)

	essay := doc.Archives[0].Cards[1]
	count := 0
	for _, l := range essay.Labels {
		for _, item := range l.Content {
			if item == "#vigilant" {
				count++
			}
		}
	}
	assert.Equal(t, 1, count, "the forward reference must not duplicate")
}

// TestLinker_Deterministic produces identical output across runs.
func TestLinker_Deterministic(t *testing.T) {
	source := "--<A>--\n" +
		"<+c1\n---r\n`a`[1]\n/+>\n" +
		"<+c2\n---r\n`b`[2]\n/+>\n" +
		"<+c3\n---r\n`c`[3]\n/+>"

	first := linkSource(t, source)
	second := linkSource(t, source)

	require.Len(t, first.AnnotationArchive.Cards, 3)
	for i := range first.AnnotationArchive.Cards {
		assert.Equal(t, first.AnnotationArchive.Cards[i].Theme,
			second.AnnotationArchive.Cards[i].Theme)
	}
}

// TestLinker_ExistingTargetNotDuplicated skips cards that already
// carry the reference target.
func TestLinker_ExistingTargetNotDuplicated(t *testing.T) {
	source := "--<A>--\n" +
		"<+vigilant\n---r\n`alert`[watchful]\n/+>\n" +
		"<+essay\n(>: #vigilant)\n---r\nStay vigilant.\n/+>"
	doc := linkSource(t, source)

	essay := doc.Archives[0].Cards[1]
	count := 0
	for _, l := range essay.Labels {
		for _, item := range l.Content {
			if item == "#vigilant" {
				count++
			}
		}
	}
	assert.Equal(t, 1, count)
}
