package driving

import (
	"context"

	"github.com/custodia-labs/remup-cli/internal/core/domain"
)

// CompileRequest is one pipeline run over a complete source text.
// The core performs no file I/O; callers read the file first.
type CompileRequest struct {
	// Source is the complete UTF-8 source text.
	Source string

	// SourceName identifies the source (usually a file name). Used for
	// title derivation when Title is empty.
	SourceName string

	// Title overrides the derived title when non-empty.
	Title string
}

// CompileResult is a fully linked document plus everything the caller
// needs to report on the run.
type CompileResult struct {
	// Document is the linked note tree, ready for rendering.
	Document *domain.Document

	// Title is the effective page title.
	Title string

	// Warnings are the recoverable problems, in source order.
	Warnings []domain.Warning

	// Stats summarises the document.
	Stats domain.Stats
}

// CompilerService runs the tokenize, parse and link pipeline.
type CompilerService interface {
	// Compile runs the pipeline over one source text. Recoverable
	// problems surface as warnings on the result; the only hard
	// failure is a *domain.ParseError.
	Compile(ctx context.Context, req CompileRequest) (*CompileResult, error)
}

// BatchRequest compiles every RemUp file under a directory.
type BatchRequest struct {
	// InputDir is the directory to walk.
	InputDir string

	// OutputDir receives the rendered HTML tree.
	OutputDir string

	// Theme names the CSS theme for rendering.
	Theme string

	// TitlePrefix, when set, prefixes each derived title.
	TitlePrefix string

	// Force recompiles files even when the build cache says they are
	// unchanged.
	Force bool

	// Recursive walks subdirectories.
	Recursive bool
}

// BatchFileResult is the outcome for one file in a batch.
type BatchFileResult struct {
	SourcePath string
	OutputPath string
	Title      string
	Stats      domain.Stats
	Warnings   []domain.Warning

	// Skipped is true when the build cache was fresh.
	Skipped bool

	// Err is the per-file failure, nil on success. Batch runs continue
	// past failed files.
	Err error
}

// BatchResult summarises a directory build.
type BatchResult struct {
	Files     []BatchFileResult
	Succeeded int
	Failed    int
	Skipped   int
	IndexPath string
	OutputDir string
}

// BatchService compiles directories of RemUp files.
type BatchService interface {
	// CompileDir compiles every source file under the input directory,
	// renders each to the output directory and writes an index page.
	CompileDir(ctx context.Context, req BatchRequest) (*BatchResult, error)
}
