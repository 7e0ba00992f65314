package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/remup-cli/internal/core/domain"
	"github.com/custodia-labs/remup-cli/internal/core/ports/driven"
	"github.com/custodia-labs/remup-cli/internal/core/ports/driving"
	"github.com/custodia-labs/remup-cli/internal/logger"
)

// Ensure Batch implements the interface.
var _ driving.BatchService = (*Batch)(nil)

// batchParallelism bounds concurrent per-file pipeline runs. Each run
// shares no mutable state with the others.
const batchParallelism = 4

// Batch compiles every RemUp file under a directory, renders the
// results and writes an index page. The build cache, when configured,
// lets unchanged files skip recompilation.
type Batch struct {
	compiler driving.CompilerService
	renderer driven.Renderer
	builds   driven.BuildStore
}

// NewBatch creates a directory build service. builds may be nil, in
// which case every file is compiled.
func NewBatch(compiler driving.CompilerService, renderer driven.Renderer, builds driven.BuildStore) *Batch {
	return &Batch{compiler: compiler, renderer: renderer, builds: builds}
}

// CompileDir walks the input directory, compiles each source file in
// parallel and writes the rendered tree plus an index page. Per-file
// failures are recorded and do not stop the batch.
func (b *Batch) CompileDir(ctx context.Context, req driving.BatchRequest) (*driving.BatchResult, error) {
	if b.renderer == nil {
		return nil, domain.ErrRendererUnavailable
	}

	sources, err := b.findSources(req.InputDir, req.Recursive)
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("no RemUp files under %s: %w", req.InputDir, domain.ErrNotFound)
	}

	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	logger.Info("batch: %d files from %s", len(sources), req.InputDir)

	results := make([]driving.BatchFileResult, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchParallelism)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = b.compileOne(gctx, req, src)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &driving.BatchResult{Files: results, OutputDir: req.OutputDir}
	for i := range results {
		switch {
		case results[i].Err != nil:
			out.Failed++
		case results[i].Skipped:
			out.Skipped++
			out.Succeeded++
		default:
			out.Succeeded++
		}
	}

	if indexPath, err := b.writeIndex(ctx, req, results); err != nil {
		logger.Warn("index generation failed: %v", err)
	} else {
		out.IndexPath = indexPath
	}
	return out, nil
}

// compileOne runs the full pipeline for a single file: read, cache
// check, compile, render, write, record.
func (b *Batch) compileOne(ctx context.Context, req driving.BatchRequest, srcPath string) driving.BatchFileResult {
	res := driving.BatchFileResult{SourcePath: srcPath}

	source, err := os.ReadFile(srcPath)
	if err != nil {
		res.Err = fmt.Errorf("reading %s: %w", srcPath, err)
		return res
	}

	sum := sha256.Sum256(source)
	hash := hex.EncodeToString(sum[:])
	res.OutputPath = b.outputPath(req, srcPath)

	if !req.Force && b.builds != nil {
		if rec, err := b.builds.GetBySource(ctx, srcPath); err == nil &&
			rec.SourceHash == hash && fileExists(rec.OutputPath) {
			res.OutputPath = rec.OutputPath
			res.Title = rec.Title
			res.Stats = rec.Stats
			res.Skipped = true
			logger.Debug("cache fresh, skipping %s", srcPath)
			return res
		}
	}

	title := ""
	if req.TitlePrefix != "" {
		title = req.TitlePrefix + " - " + DeriveTitle(srcPath)
	}
	compiled, err := b.compiler.Compile(ctx, driving.CompileRequest{
		Source:     string(source),
		SourceName: srcPath,
		Title:      title,
	})
	if err != nil {
		res.Err = err
		return res
	}
	res.Title = compiled.Title
	res.Stats = compiled.Stats
	res.Warnings = compiled.Warnings

	html, err := b.renderer.Render(ctx, compiled.Document, driven.RenderOptions{
		Title: compiled.Title,
		Theme: req.Theme,
	})
	if err != nil {
		res.Err = fmt.Errorf("rendering %s: %w", srcPath, err)
		return res
	}

	if err := os.MkdirAll(filepath.Dir(res.OutputPath), 0o755); err != nil {
		res.Err = err
		return res
	}
	if err := os.WriteFile(res.OutputPath, html, 0o644); err != nil {
		res.Err = fmt.Errorf("writing %s: %w", res.OutputPath, err)
		return res
	}

	if b.builds != nil {
		rec := &driven.BuildRecord{
			ID:         uuid.New().String(),
			SourcePath: srcPath,
			SourceHash: hash,
			OutputPath: res.OutputPath,
			Title:      compiled.Title,
			Stats:      compiled.Stats,
			Warnings:   len(compiled.Warnings),
			CompiledAt: time.Now(),
		}
		if err := b.builds.Save(ctx, rec); err != nil {
			logger.Warn("build cache save failed for %s: %v", srcPath, err)
		}
	}
	return res
}

// findSources lists RemUp files under dir, sorted for deterministic
// batch ordering.
func (b *Batch) findSources(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", dir, domain.ErrInvalidInput)
	}

	var sources []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != dir {
				return fs.SkipDir
			}
			return nil
		}
		if IsSourceFile(path) {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(sources)
	return sources, nil
}

// outputPath mirrors the source layout under the output directory,
// swapping the extension for .html.
func (b *Batch) outputPath(req driving.BatchRequest, srcPath string) string {
	rel, err := filepath.Rel(req.InputDir, srcPath)
	if err != nil {
		rel = filepath.Base(srcPath)
	}
	ext := filepath.Ext(rel)
	return filepath.Join(req.OutputDir, strings.TrimSuffix(rel, ext)+".html")
}

// writeIndex renders the index page for a batch with more than one
// successful file.
func (b *Batch) writeIndex(ctx context.Context, req driving.BatchRequest, results []driving.BatchFileResult) (string, error) {
	var entries []driven.IndexEntry
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		href, err := filepath.Rel(req.OutputDir, results[i].OutputPath)
		if err != nil {
			href = filepath.Base(results[i].OutputPath)
		}
		entries = append(entries, driven.IndexEntry{
			Title: results[i].Title,
			Href:  filepath.ToSlash(href),
			Stats: results[i].Stats,
		})
	}
	if len(entries) <= 1 {
		return "", nil
	}

	title := req.TitlePrefix
	if title == "" {
		title = filepath.Base(req.InputDir)
	}
	html, err := b.renderer.RenderIndex(ctx, title, entries)
	if err != nil {
		return "", err
	}
	indexPath := filepath.Join(req.OutputDir, "index.html")
	if err := os.WriteFile(indexPath, html, 0o644); err != nil {
		return "", err
	}
	return indexPath, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
