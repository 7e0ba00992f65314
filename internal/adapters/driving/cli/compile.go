package cli

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/remup-cli/internal/core/domain"
	"github.com/custodia-labs/remup-cli/internal/core/ports/driven"
	"github.com/custodia-labs/remup-cli/internal/core/ports/driving"
	"github.com/custodia-labs/remup-cli/internal/core/services"
)

var compileCmd = &cobra.Command{
	Use:   "compile [path]",
	Short: "Compile a RemUp file or directory to HTML",
	Long: `Compile a single RemUp file, or every RemUp file under a directory,
into standalone HTML pages. Directory builds run in parallel and write
an index page when more than one document is produced.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

var (
	compileOutput    string
	compileTheme     string
	compileTitle     string
	compileForce     bool
	compileRecursive bool
)

func init() {
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "Output file or directory")
	compileCmd.Flags().StringVar(&compileTheme, "theme", "", "CSS theme (see 'remup themes')")
	compileCmd.Flags().StringVar(&compileTitle, "title", "", "Page title (single file) or index title prefix (directory)")
	compileCmd.Flags().BoolVarP(&compileForce, "force", "f", false, "Recompile even when the build cache is fresh")
	compileCmd.Flags().BoolVarP(&compileRecursive, "recursive", "r", false, "Descend into subdirectories")
	rootCmd.AddCommand(compileCmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	if compilerService == nil {
		return errors.New("compiler service not configured")
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	theme := compileTheme
	if theme == "" && configStore != nil {
		theme = configStore.GetString(driven.KeyTheme)
	}

	if info.IsDir() {
		return runCompileDir(cmd, path, theme)
	}
	return runCompileFile(cmd, path, theme)
}

// runCompileFile compiles one file end to end.
func runCompileFile(cmd *cobra.Command, path, theme string) error {
	if renderer == nil {
		return domain.ErrRendererUnavailable
	}
	if !services.IsSourceFile(path) {
		return fmt.Errorf("%s is not a RemUp file: %w", path, domain.ErrUnsupportedFormat)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	ctx := context.Background()
	result, err := compilerService.Compile(ctx, driving.CompileRequest{
		Source:     string(source),
		SourceName: path,
		Title:      compileTitle,
	})
	if err != nil {
		var perr *domain.ParseError
		if errors.As(err, &perr) {
			return fmt.Errorf("%s: %w", path, perr)
		}
		return err
	}

	page, err := renderer.Render(ctx, result.Document, driven.RenderOptions{
		Title: result.Title,
		Theme: theme,
	})
	if err != nil {
		return err
	}

	outPath := singleOutputPath(path, compileOutput)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(outPath, page, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}

	if buildStore != nil {
		sum := sha256.Sum256(source)
		rec := &driven.BuildRecord{
			ID:         uuid.New().String(),
			SourcePath: path,
			SourceHash: hex.EncodeToString(sum[:]),
			OutputPath: outPath,
			Title:      result.Title,
			Stats:      result.Stats,
			Warnings:   len(result.Warnings),
			CompiledAt: time.Now(),
		}
		if err := buildStore.Save(context.Background(), rec); err != nil {
			cmd.PrintErrf("%s\n", styled(warnStyle, fmt.Sprintf("build cache save failed: %v", err)))
		}
	}

	printWarnings(cmd, result.Warnings)
	cmd.Printf("%s %s -> %s\n", styled(successStyle, "compiled"), path, outPath)
	cmd.Printf("%s\n", styled(dimStyle, formatStats(result.Stats)))
	return nil
}

// runCompileDir compiles a directory through the batch service.
func runCompileDir(cmd *cobra.Command, path, theme string) error {
	if batchService == nil {
		return errors.New("batch service not configured")
	}

	outDir := compileOutput
	if outDir == "" && configStore != nil {
		outDir = configStore.GetString(driven.KeyOutputDir)
	}
	if outDir == "" {
		outDir = filepath.Join(path, "build")
	}

	result, err := batchService.CompileDir(context.Background(), driving.BatchRequest{
		InputDir:    path,
		OutputDir:   outDir,
		Theme:       theme,
		TitlePrefix: compileTitle,
		Force:       compileForce,
		Recursive:   compileRecursive,
	})
	if err != nil {
		return err
	}

	for _, file := range result.Files {
		switch {
		case file.Err != nil:
			cmd.Printf("%s %s: %v\n", styled(errorStyle, "failed"), file.SourcePath, file.Err)
		case file.Skipped:
			cmd.Printf("%s %s\n", styled(dimStyle, "cached"), file.SourcePath)
		default:
			printWarnings(cmd, file.Warnings)
			cmd.Printf("%s %s -> %s\n", styled(successStyle, "compiled"), file.SourcePath, file.OutputPath)
		}
	}

	summary := fmt.Sprintf("%d succeeded, %d failed, %d cached", result.Succeeded, result.Failed, result.Skipped)
	cmd.Printf("%s\n", styled(dimStyle, summary))
	if result.IndexPath != "" {
		cmd.Printf("index: %s\n", result.IndexPath)
	}
	if result.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", result.Failed, len(result.Files))
	}
	return nil
}

// printWarnings lists parse warnings without failing the build.
func printWarnings(cmd *cobra.Command, warnings []domain.Warning) {
	for _, w := range warnings {
		cmd.PrintErrf("%s\n", styled(warnStyle, "warning: "+w.String()))
	}
}

// formatStats renders a one-line document summary.
func formatStats(s domain.Stats) string {
	return fmt.Sprintf("%d archives, %d cards, %d regions, %d labels, %d annotations",
		s.Archives, s.Cards, s.Regions, s.Labels, s.Annotations)
}

// singleOutputPath resolves --output for a single-file compile. An
// empty value writes next to the source; a directory value keeps the
// source basename.
func singleOutputPath(srcPath, out string) string {
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath)) + ".html"
	if out == "" {
		return filepath.Join(filepath.Dir(srcPath), base)
	}
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		return filepath.Join(out, base)
	}
	if strings.HasSuffix(out, string(os.PathSeparator)) {
		return filepath.Join(out, base)
	}
	return out
}
