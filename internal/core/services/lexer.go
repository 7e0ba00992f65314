package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/remup-cli/internal/core/domain"
)

// Structural line patterns, tried top to bottom. Precedence is total:
// the first match wins, anything left falls through to inline scanning.
var (
	archivePattern    = regexp.MustCompile(`^\s*--<([^>]+)>--\s*$`)
	cardStartPattern  = regexp.MustCompile(`^\s*<\+(.*)$`)
	cardEndPattern    = regexp.MustCompile(`^\s*/\+>?\s*$`)
	regionPattern     = regexp.MustCompile(`^\s*---\s*(\S.*?)\s*$`)
	labelPattern      = regexp.MustCompile(`^\s*\(([^:)]+):\s*([^)]+)\)\s*$`)
	fenceOpenPattern  = regexp.MustCompile("^\\s*```\\s*(\\w*)\\s*$")
	fenceClosePattern = regexp.MustCompile("^\\s*```\\s*$")
	orderedPattern    = regexp.MustCompile(`^\s*\d+\.\s+(.*)$`)
	unorderedPattern  = regexp.MustCompile(`^\s*-\s+(.*)$`)
	annotationPattern = regexp.MustCompile("`([^`\n]+)`\\[([^\\]]*)\\]")
)

// asideMarker introduces an inline aside; everything after it to the
// end of the line is the aside text.
const asideMarker = ">>"

// Lexer turns RemUp source text into a flat token stream. It never
// fails: unrecognised lines degrade to Text, and an unterminated code
// fence is flushed at end of input. A Lexer carries no state between
// calls and is safe for concurrent use.
type Lexer struct{}

// NewLexer creates a lexer.
func NewLexer() *Lexer {
	return &Lexer{}
}

// lexState tracks fenced-code accumulation within one Tokenize call.
type lexState struct {
	tokens    []domain.Token
	inFence   bool
	fenceBody []string
	fenceLine int
}

// Tokenize splits source into tokens. Line numbers are 1-based and
// monotonic non-decreasing. Every input line yields at least one token.
func (l *Lexer) Tokenize(source string) []domain.Token {
	st := &lexState{}
	lines := strings.Split(source, "\n")
	for i, line := range lines {
		l.lexLine(st, strings.TrimSuffix(line, "\r"), i+1)
	}
	if st.inFence {
		// Unterminated fence: flush the body without a CodeBlockEnd.
		st.emit(domain.Token{
			Kind:  domain.TokenCodeBlockContent,
			Value: strings.Join(st.fenceBody, "\n"),
			Line:  st.fenceLine,
		})
	}
	return st.tokens
}

func (st *lexState) emit(t domain.Token) {
	st.tokens = append(st.tokens, t)
}

// lexLine classifies one source line. Fenced-code state is checked
// first so nothing inside a fence is structurally interpreted.
func (l *Lexer) lexLine(st *lexState, line string, num int) {
	if st.inFence {
		if fenceClosePattern.MatchString(line) {
			st.emit(domain.Token{
				Kind:  domain.TokenCodeBlockContent,
				Value: strings.Join(st.fenceBody, "\n"),
				Line:  st.fenceLine,
			})
			st.emit(domain.Token{Kind: domain.TokenCodeBlockEnd, Line: num})
			st.inFence = false
			st.fenceBody = nil
			return
		}
		st.fenceBody = append(st.fenceBody, line)
		return
	}

	if strings.TrimSpace(line) == "" {
		st.emit(domain.Token{Kind: domain.TokenEmptyLine, Line: num})
		return
	}

	if m := fenceOpenPattern.FindStringSubmatch(line); m != nil {
		st.emit(domain.Token{Kind: domain.TokenCodeBlockStart, Value: m[1], Line: num})
		st.inFence = true
		st.fenceBody = nil
		st.fenceLine = num
		return
	}

	if m := archivePattern.FindStringSubmatch(line); m != nil {
		st.emit(domain.Token{Kind: domain.TokenArchiveStart, Value: strings.TrimSpace(m[1]), Line: num})
		return
	}

	if m := cardStartPattern.FindStringSubmatch(line); m != nil {
		st.emit(domain.Token{Kind: domain.TokenCardStart, Value: strings.TrimSpace(m[1]), Line: num})
		return
	}

	if cardEndPattern.MatchString(line) {
		st.emit(domain.Token{Kind: domain.TokenCardEnd, Line: num})
		return
	}

	if m := regionPattern.FindStringSubmatch(line); m != nil {
		st.emit(domain.Token{Kind: domain.TokenRegionStart, Value: m[1], Line: num})
		return
	}

	if m := labelPattern.FindStringSubmatch(line); m != nil {
		items := strings.Split(m[2], ",")
		for i := range items {
			items[i] = strings.TrimSpace(items[i])
		}
		st.emit(domain.Token{
			Kind:  domain.TokenLabel,
			Value: strings.TrimSpace(m[1]) + ":" + strings.Join(items, ","),
			Line:  num,
		})
		return
	}

	if m := orderedPattern.FindStringSubmatch(line); m != nil {
		rest := strings.TrimSpace(m[1])
		st.emit(domain.Token{Kind: domain.TokenOrderedListItem, Value: rest, Line: num})
		l.scanInline(st, rest, num)
		return
	}

	if m := unorderedPattern.FindStringSubmatch(line); m != nil {
		rest := strings.TrimSpace(m[1])
		st.emit(domain.Token{Kind: domain.TokenUnorderedListItem, Value: rest, Line: num})
		l.scanInline(st, rest, num)
		return
	}

	l.scanInline(st, line, num)
}

// scanInline extracts annotation spans and at most one aside from a
// logical line. Annotations are discovered left to right before the
// aside is sought. The accumulated plain text is emitted as a single
// Text token, with each span replaced by an emphasised placeholder so
// the prose stays legible ahead of rendering.
func (l *Lexer) scanInline(st *lexState, line string, num int) {
	remaining := line
	var text strings.Builder

	for {
		loc := annotationPattern.FindStringSubmatchIndex(remaining)
		if loc == nil {
			break
		}
		content := remaining[loc[2]:loc[3]]
		note := remaining[loc[4]:loc[5]]
		text.WriteString(remaining[:loc[0]])
		text.WriteString("__" + content + "__")
		st.emit(domain.Token{
			Kind:  domain.TokenAnnotationSpan,
			Value: content,
			Note:  note,
			Line:  num,
		})
		remaining = remaining[loc[1]:]
	}

	aside := ""
	hasAside := false
	if idx := strings.Index(remaining, asideMarker); idx >= 0 {
		text.WriteString(remaining[:idx])
		aside = strings.TrimSpace(remaining[idx+len(asideMarker):])
		hasAside = true
		remaining = ""
	}
	text.WriteString(remaining)

	if t := strings.TrimSpace(text.String()); t != "" {
		st.emit(domain.Token{Kind: domain.TokenText, Value: t, Line: num})
	}
	if hasAside {
		st.emit(domain.Token{Kind: domain.TokenInlineAside, Value: aside, Line: num})
	}
}
