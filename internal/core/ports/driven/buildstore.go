package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/remup-cli/internal/core/domain"
)

// BuildRecord is one cached compile result.
// Backed by SQLite for metadata storage.
type BuildRecord struct {
	// ID is the unique identifier for the build.
	ID string

	// SourcePath is the absolute path of the compiled source file.
	SourcePath string

	// SourceHash is the SHA-256 of the source content at compile time.
	SourceHash string

	// OutputPath is where the rendered HTML was written.
	OutputPath string

	// Title is the page title the build used.
	Title string

	// Stats summarises the compiled document.
	Stats domain.Stats

	// Warnings is the number of parse warnings.
	Warnings int

	// CompiledAt is when the build finished.
	CompiledAt time.Time
}

// BuildStore persists build records so unchanged sources can skip
// recompilation.
type BuildStore interface {
	// Save stores or replaces the record for a source path.
	Save(ctx context.Context, rec *BuildRecord) error

	// GetBySource retrieves the latest record for a source path.
	// Returns domain.ErrNotFound when the source was never built.
	GetBySource(ctx context.Context, sourcePath string) (*BuildRecord, error)

	// List returns all records, most recent first.
	List(ctx context.Context) ([]BuildRecord, error)

	// Clear removes all records.
	Clear(ctx context.Context) error

	// Close releases the underlying storage.
	Close() error
}
