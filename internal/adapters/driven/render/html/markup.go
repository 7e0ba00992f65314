package html

import (
	"fmt"
	"html/template"
	"strings"
	"unicode"

	"github.com/custodia-labs/remup-cli/internal/core/domain"
)

// slugify turns a card or archive name into an anchor-safe id.
// Unicode letters survive so non-Latin themes keep usable anchors.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	hyphen := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			hyphen = false
		case r == ' ' || r == '\t' || r == '-':
			if !hyphen && b.Len() > 0 {
				b.WriteByte('-')
				hyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// anchoredItem locates one list item inside a region's line sequence.
type anchoredItem struct {
	list *domain.List
	item domain.ListItem
}

// regionBody renders a region's lines as HTML. Prose becomes
// paragraphs, fenced blocks become pre/code, anchored list items fold
// back into ul/ol runs, and annotation placeholders are replaced by
// popover spans in discovery order.
func regionBody(region *domain.Region) template.HTML {
	anchors := map[int]anchoredItem{}
	for _, list := range region.Lists {
		for _, item := range list.Items {
			if item.Anchor >= 0 {
				anchors[item.Anchor] = anchoredItem{list: list, item: item}
			}
		}
	}

	var (
		b         strings.Builder
		anns      = region.Annotations
		openList  *domain.List
		inCode    bool
		codeLang  string
		codeLines []string
	)

	closeList := func() {
		if openList != nil {
			b.WriteString(listClose(openList))
			b.WriteByte('\n')
			openList = nil
		}
	}

	for i, line := range region.Lines {
		if inCode {
			if strings.TrimSpace(line) == "```" {
				writeCodeBlock(&b, codeLang, codeLines)
				inCode = false
				codeLines = nil
				continue
			}
			codeLines = append(codeLines, line)
			continue
		}
		if lang, ok := strings.CutPrefix(strings.TrimSpace(line), "```"); ok {
			closeList()
			inCode = true
			codeLang = strings.TrimSpace(lang)
			continue
		}

		escaped := template.HTMLEscapeString(line)
		escaped, anns = substituteAnnotations(escaped, anns)
		if aside, ok := region.Asides[i]; ok {
			escaped += ` <span class="inline-aside">` + template.HTMLEscapeString(aside.Text) + `</span>`
		}

		if anchored, ok := anchors[i]; ok {
			if openList != anchored.list {
				closeList()
				openList = anchored.list
				b.WriteString(listOpen(openList))
				b.WriteByte('\n')
			}
			b.WriteString("<li>" + escaped + "</li>\n")
			continue
		}

		closeList()
		b.WriteString(`<p class="line">` + escaped + "</p>\n")
	}

	if inCode {
		// Unterminated fence at end of input.
		writeCodeBlock(&b, codeLang, codeLines)
	}
	closeList()
	return template.HTML(b.String())
}

// substituteAnnotations replaces the leading annotations' placeholders
// in an escaped line with popover markup, returning the unconsumed
// tail of the annotation queue.
func substituteAnnotations(escaped string, anns []*domain.Annotation) (string, []*domain.Annotation) {
	for len(anns) > 0 {
		placeholder := "__" + template.HTMLEscapeString(anns[0].Content) + "__"
		if !strings.Contains(escaped, placeholder) {
			break
		}
		escaped = strings.Replace(escaped, placeholder, annotationSpan(anns[0]), 1)
		anns = anns[1:]
	}
	return escaped, anns
}

// annotationSpan is the popover markup for one annotation. The id is
// the anchor the generated annotation cards link back to.
func annotationSpan(ann *domain.Annotation) string {
	return fmt.Sprintf(
		`<span class="annotation-container" id="vibe-%d"><span class="annotation">%s</span><span class="annotation-popup">%s</span></span>`,
		ann.ID,
		template.HTMLEscapeString(ann.Content),
		template.HTMLEscapeString(ann.Note),
	)
}

func writeCodeBlock(b *strings.Builder, lang string, lines []string) {
	b.WriteString(`<pre class="code-block"><code`)
	if lang != "" {
		b.WriteString(` class="language-` + template.HTMLEscapeString(lang) + `"`)
	}
	b.WriteByte('>')
	b.WriteString(template.HTMLEscapeString(strings.Join(lines, "\n")))
	b.WriteString("</code></pre>\n")
}

func listOpen(list *domain.List) string {
	if list.Kind == domain.ListOrdered {
		return `<ol class="region-list">`
	}
	return `<ul class="region-list">`
}

func listClose(list *domain.List) string {
	if list.Kind == domain.ListOrdered {
		return "</ol>"
	}
	return "</ul>"
}
