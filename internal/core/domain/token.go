package domain

// TokenKind identifies a lexed token. The set is closed: the parser
// switches exhaustively over it.
type TokenKind int

const (
	// TokenText is any run of plain prose on a line.
	TokenText TokenKind = iota

	// TokenArchiveStart is an archive header: --<name>--
	TokenArchiveStart

	// TokenCardStart opens a card: <+theme
	TokenCardStart

	// TokenCardEnd closes a card: /+> or /+
	TokenCardEnd

	// TokenLabel is a label line: (symbol: item, item)
	TokenLabel

	// TokenRegionStart is a region header: ---name
	TokenRegionStart

	// TokenAnnotationSpan is an inline annotation: `content`[note]
	TokenAnnotationSpan

	// TokenInlineAside is a trailing aside: >> text
	TokenInlineAside

	// TokenOrderedListItem is a numbered list item: 1. item
	TokenOrderedListItem

	// TokenUnorderedListItem is a bulleted list item: - item
	TokenUnorderedListItem

	// TokenCodeBlockStart opens a fenced block: ```lang
	TokenCodeBlockStart

	// TokenCodeBlockContent carries the accumulated fenced body.
	TokenCodeBlockContent

	// TokenCodeBlockEnd closes a fenced block: ```
	TokenCodeBlockEnd

	// TokenEmptyLine is a whitespace-only line.
	TokenEmptyLine
)

// String returns the token kind name for logs and tests.
func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "Text"
	case TokenArchiveStart:
		return "ArchiveStart"
	case TokenCardStart:
		return "CardStart"
	case TokenCardEnd:
		return "CardEnd"
	case TokenLabel:
		return "Label"
	case TokenRegionStart:
		return "RegionStart"
	case TokenAnnotationSpan:
		return "AnnotationSpan"
	case TokenInlineAside:
		return "InlineAside"
	case TokenOrderedListItem:
		return "OrderedListItem"
	case TokenUnorderedListItem:
		return "UnorderedListItem"
	case TokenCodeBlockStart:
		return "CodeBlockStart"
	case TokenCodeBlockContent:
		return "CodeBlockContent"
	case TokenCodeBlockEnd:
		return "CodeBlockEnd"
	case TokenEmptyLine:
		return "EmptyLine"
	default:
		return "Unknown"
	}
}

// Token is one unit of the lexed source stream.
// Tokens are immutable, produced once, consumed once, in source order.
type Token struct {
	// Kind classifies the token.
	Kind TokenKind

	// Value is the token payload. For AnnotationSpan it is the span
	// content; Note carries the popover text separately.
	Value string

	// Note is the popover text of an AnnotationSpan; empty otherwise.
	Note string

	// Line is the 1-based source line the token was produced from.
	// Line numbers are monotonic non-decreasing across the stream.
	Line int
}
