package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/remup-cli/internal/core/domain"
	"github.com/custodia-labs/remup-cli/internal/logger"
)

// defaultArchiveName is used when a card appears before any archive
// header.
const defaultArchiveName = "Default"

// Parser builds a document tree from a token stream. It recovers from
// every structural problem except an empty card theme: missing
// terminators, labels outside cards and region headers outside cards
// all degrade to warnings without losing content.
type Parser struct{}

// NewParser creates a parser.
func NewParser() *Parser {
	return &Parser{}
}

// parseState is the card-building state machine threaded through one
// Parse call. The annotation counter lives here, never in a global, so
// parallel per-file compilations stay independent.
type parseState struct {
	doc      *domain.Document
	archive  *domain.Archive
	card     *domain.Card
	region   *domain.Region
	list     *domain.List
	pending  *domain.CodeBlock
	warnings []domain.Warning

	// nextAnnotationID increases strictly in discovery order.
	nextAnnotationID int

	// lastStructural remembers whether the previous handled token
	// opened an archive or a card, for comment-line description and
	// metadata capture.
	lastStructural domain.TokenKind
}

func (st *parseState) warnf(line int, format string, args ...any) {
	w := domain.Warningf(line, format, args...)
	st.warnings = append(st.warnings, w)
	logger.Warn("%s", w)
}

// Parse consumes tokens into a document. Warnings accumulate in order;
// the only hard failure is an empty card theme, returned as a
// *domain.ParseError citing the card start line.
func (p *Parser) Parse(tokens []domain.Token) (*domain.Document, []domain.Warning, error) {
	st := &parseState{
		doc:              &domain.Document{},
		nextAnnotationID: 1,
		lastStructural:   domain.TokenText,
	}

	pos := 0
	for pos < len(tokens) {
		next, err := p.handle(st, tokens, pos)
		if err != nil {
			return nil, st.warnings, err
		}
		if next <= pos {
			// Position must advance every iteration.
			return nil, st.warnings, fmt.Errorf("parser stalled at token %d (%s)", pos, tokens[pos].Kind)
		}
		pos = next
	}

	// End of input closes whatever is still open. Missing terminators
	// never lose content.
	p.closeCard(st, 0)
	return st.doc, st.warnings, nil
}

// handle processes the token at pos and returns the next position.
func (p *Parser) handle(st *parseState, tokens []domain.Token, pos int) (int, error) {
	tok := tokens[pos]

	switch tok.Kind {
	case domain.TokenArchiveStart:
		p.closeCard(st, tok.Line)
		st.archive = &domain.Archive{Name: tok.Value}
		// Archives join the document immediately and are retained even
		// with zero cards.
		st.doc.Archives = append(st.doc.Archives, st.archive)
		st.lastStructural = domain.TokenArchiveStart
		logger.Debug("archive %q opened at line %d", tok.Value, tok.Line)
		return pos + 1, nil

	case domain.TokenCardStart:
		if strings.TrimSpace(tok.Value) == "" {
			return 0, domain.NewParseError(tok.Line, domain.ErrEmptyTheme)
		}
		p.closeCard(st, tok.Line)
		if st.archive == nil {
			st.archive = &domain.Archive{Name: defaultArchiveName}
			st.doc.Archives = append(st.doc.Archives, st.archive)
			st.warnf(tok.Line, "card %q appears before any archive; using %q", tok.Value, defaultArchiveName)
		}
		st.card = &domain.Card{
			Theme:    strings.TrimSpace(tok.Value),
			Metadata: map[string]string{},
		}
		st.archive.Cards = append(st.archive.Cards, st.card)
		st.lastStructural = domain.TokenCardStart
		return pos + 1, nil

	case domain.TokenCardEnd:
		if st.card != nil && len(st.card.Regions) == 0 {
			st.warnf(tok.Line, "card %q has no regions", st.card.Theme)
		}
		p.closeCard(st, tok.Line)
		st.lastStructural = domain.TokenCardEnd
		return pos + 1, nil

	case domain.TokenLabel:
		if st.card == nil {
			st.warnf(tok.Line, "label outside a card is dropped")
			return pos + 1, nil
		}
		st.card.Labels = append(st.card.Labels, parseLabel(tok.Value))
		return pos + 1, nil

	case domain.TokenRegionStart:
		if st.card == nil {
			st.warnf(tok.Line, "region %q outside a card is dropped", tok.Value)
			return pos + 1, nil
		}
		p.closeRegion(st)
		st.region = &domain.Region{
			Name:   tok.Value,
			Asides: map[int]*domain.Aside{},
		}
		st.card.Regions = append(st.card.Regions, st.region)
		st.lastStructural = domain.TokenRegionStart
		return pos + 1, nil

	case domain.TokenOrderedListItem, domain.TokenUnorderedListItem:
		if st.region == nil {
			// The inline tokens that follow carry the same line; they
			// are dropped by their own handlers.
			st.warnf(tok.Line, "list item outside a region is dropped")
			return pos + 1, nil
		}
		kind := domain.ListUnordered
		if tok.Kind == domain.TokenOrderedListItem {
			kind = domain.ListOrdered
		}
		if st.list == nil || st.list.Kind != kind {
			st.list = &domain.List{Kind: kind}
			st.region.Lists = append(st.region.Lists, st.list)
		}
		st.list.Items = append(st.list.Items, domain.ListItem{Content: tok.Value, Line: tok.Line, Anchor: -1})
		return pos + 1, nil

	case domain.TokenAnnotationSpan:
		if st.region == nil || st.card == nil {
			st.warnf(tok.Line, "annotation %q outside a region is dropped", tok.Value)
			return pos + 1, nil
		}
		ann := &domain.Annotation{
			ID:              st.nextAnnotationID,
			Content:         strings.TrimSpace(tok.Value),
			Note:            strings.TrimSpace(tok.Note),
			OriginCardTheme: st.card.Theme,
			Line:            tok.Line,
		}
		st.nextAnnotationID++
		st.region.Annotations = append(st.region.Annotations, ann)
		st.card.Annotations = append(st.card.Annotations, ann)
		return pos + 1, nil

	case domain.TokenInlineAside:
		if st.region == nil || len(st.region.Lines) == 0 {
			return pos + 1, nil
		}
		anchor := len(st.region.Lines) - 1
		st.region.Asides[anchor] = &domain.Aside{AnchorLine: anchor, Text: tok.Value}
		return pos + 1, nil

	case domain.TokenText:
		p.handleText(st, tok)
		return pos + 1, nil

	case domain.TokenCodeBlockStart:
		st.pending = &domain.CodeBlock{Language: tok.Value}
		return pos + 1, nil

	case domain.TokenCodeBlockContent:
		p.handleCodeBody(st, tok)
		return pos + 1, nil

	case domain.TokenCodeBlockEnd:
		st.pending = nil
		return pos + 1, nil

	case domain.TokenEmptyLine:
		// A blank line ends the current list run but is otherwise
		// not recorded.
		st.list = nil
		return pos + 1, nil

	default:
		return 0, fmt.Errorf("unhandled token kind %v at line %d", tok.Kind, tok.Line)
	}
}

// handleText appends a prose line to the open region, or captures
// comment lines as archive description / card metadata. Comment lines
// anywhere else are ignored.
func (p *Parser) handleText(st *parseState, tok domain.Token) {
	if strings.HasPrefix(tok.Value, "#") {
		comment := strings.TrimSpace(strings.TrimPrefix(tok.Value, "#"))
		switch st.lastStructural {
		case domain.TokenArchiveStart:
			if st.archive != nil {
				if st.archive.Description != "" {
					st.archive.Description += " "
				}
				st.archive.Description += comment
			}
		case domain.TokenCardStart:
			if st.card != nil {
				if key, value, ok := strings.Cut(comment, ":"); ok {
					st.card.Metadata[strings.TrimSpace(key)] = strings.TrimSpace(value)
				}
			}
		}
		return
	}

	if st.region == nil {
		return
	}
	st.region.Lines = append(st.region.Lines, tok.Value)
	if st.region.Content != "" {
		st.region.Content += "\n"
	}
	st.region.Content += tok.Value
	st.lastStructural = domain.TokenText

	// A list marker splits each item into a list token followed by the
	// item's prose on the same line; anchor that prose to the item so
	// renderers place it inside the list.
	if st.list != nil && len(st.list.Items) > 0 {
		last := &st.list.Items[len(st.list.Items)-1]
		if last.Line == tok.Line && last.Anchor == -1 {
			last.Anchor = len(st.region.Lines) - 1
		}
	}
}

// handleCodeBody attaches a fenced body to the open region, preserving
// the fence lines so the region round-trips. A fence outside a region
// or one that never closed degrades to a warning.
func (p *Parser) handleCodeBody(st *parseState, tok domain.Token) {
	if st.pending == nil {
		st.pending = &domain.CodeBlock{}
	}
	st.pending.Content = tok.Value
	if st.region == nil {
		st.warnf(tok.Line, "code block outside a region is dropped")
		st.pending = nil
		return
	}
	st.region.CodeBlocks = append(st.region.CodeBlocks, st.pending)

	fence := "```" + st.pending.Language
	st.region.Lines = append(st.region.Lines, fence)
	st.region.Lines = append(st.region.Lines, strings.Split(tok.Value, "\n")...)
	st.region.Lines = append(st.region.Lines, "```")
	if st.region.Content != "" {
		st.region.Content += "\n"
	}
	st.region.Content += fence + "\n" + tok.Value + "\n```"
	st.pending = nil
}

// closeRegion finalises the open region, restoring the content/lines
// round-trip invariant.
func (p *Parser) closeRegion(st *parseState) {
	if st.region != nil {
		st.region.Close()
	}
	st.region = nil
	st.list = nil
}

// closeCard closes the open region and card, warning about a pending
// unterminated fence.
func (p *Parser) closeCard(st *parseState, line int) {
	if st.pending != nil {
		st.warnf(line, "code block never closed")
		st.pending = nil
	}
	p.closeRegion(st)
	st.card = nil
}

// parseLabel splits a "symbol:item,item" payload into a label. The
// payload shape is guaranteed by the lexer.
func parseLabel(payload string) *domain.Label {
	symbol, rest, _ := strings.Cut(payload, ":")
	symbol = strings.TrimSpace(symbol)
	items := strings.Split(rest, ",")
	content := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			content = append(content, item)
		}
	}
	return &domain.Label{
		Symbol:  symbol,
		Content: content,
		Kind:    domain.KindForSymbol(symbol),
	}
}
