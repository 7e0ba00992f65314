package services

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/remup-cli/internal/core/domain"
	"github.com/custodia-labs/remup-cli/internal/core/ports/driving"
	"github.com/custodia-labs/remup-cli/internal/logger"
)

// Ensure Compiler implements the interface.
var _ driving.CompilerService = (*Compiler)(nil)

// sourceExtensions are the file suffixes stripped during title
// derivation and accepted by directory builds.
var sourceExtensions = []string{".remup", ".rup", ".rem", ".ru"}

// Compiler runs the strict sequential pipeline: tokenize, parse, link.
// One compilation owns its document graph exclusively until it returns
// it, so compilations are safe to run in parallel.
type Compiler struct {
	lexer  *Lexer
	parser *Parser
	linker *Linker
}

// NewCompiler creates the pipeline service.
func NewCompiler() *Compiler {
	return &Compiler{
		lexer:  NewLexer(),
		parser: NewParser(),
		linker: NewLinker(),
	}
}

// Compile runs the pipeline over one source text.
func (c *Compiler) Compile(_ context.Context, req driving.CompileRequest) (*driving.CompileResult, error) {
	logger.Section("compile " + req.SourceName)

	tokens := c.lexer.Tokenize(req.Source)
	logger.Debug("lexed %d tokens", len(tokens))

	doc, warnings, err := c.parser.Parse(tokens)
	if err != nil {
		return nil, err
	}

	doc = c.linker.Link(doc)

	title := req.Title
	if title == "" {
		title = DeriveTitle(req.SourceName)
	}
	doc.Title = title

	stats := domain.CollectStats(doc)
	logger.Info("compiled %q: %d archives, %d cards, %d annotations, %d warnings",
		title, stats.Archives, stats.Cards, stats.Annotations, len(warnings))

	return &driving.CompileResult{
		Document: doc,
		Title:    title,
		Warnings: warnings,
		Stats:    stats,
	}, nil
}

// DeriveTitle turns a source identifier into a page title by stripping
// a known extension. Unknown identifiers pass through unchanged.
func DeriveTitle(sourceName string) string {
	if sourceName == "" {
		return "Notes"
	}
	base := filepath.Base(sourceName)
	for _, ext := range sourceExtensions {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return base
}

// IsSourceFile reports whether the path has a RemUp extension.
func IsSourceFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, known := range sourceExtensions {
		if ext == known {
			return true
		}
	}
	return false
}
