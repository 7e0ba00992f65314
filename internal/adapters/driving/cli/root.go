// Package cli wires the cobra command tree to the compile pipeline.
// Services are package-level so commands stay small; Execute builds
// the default wiring and tests substitute fakes.
package cli

import (
	"github.com/spf13/cobra"

	fileconfig "github.com/custodia-labs/remup-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/remup-cli/internal/adapters/driven/render/html"
	"github.com/custodia-labs/remup-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/remup-cli/internal/core/ports/driven"
	"github.com/custodia-labs/remup-cli/internal/core/ports/driving"
	"github.com/custodia-labs/remup-cli/internal/core/services"
	"github.com/custodia-labs/remup-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Services the commands run against. Execute wires the defaults;
// tests assign fakes directly.
var (
	compilerService driving.CompilerService
	batchService    driving.BatchService
	renderer        driven.Renderer
	configStore     driven.ConfigStore
	buildStore      driven.BuildStore
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "remup",
	Short: "Compile RemUp notes to interactive HTML",
	Long: `remup compiles card-based RemUp markup into standalone HTML pages.

Annotations become hover popovers and collect into generated annotation
cards; labels cross-link cards; a preview server recompiles on save.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// Execute wires the default adapters and runs the command tree.
func Execute() error {
	if err := wireServices(); err != nil {
		return err
	}
	return rootCmd.Execute()
}

// wireServices builds the default adapter stack. The build cache is
// optional; a cache that fails to open degrades to compiling
// everything.
func wireServices() error {
	if renderer == nil {
		r, err := html.NewRenderer()
		if err != nil {
			return err
		}
		renderer = r
	}

	if configStore == nil {
		store, err := fileconfig.NewConfigStore("")
		if err != nil {
			return err
		}
		configStore = store
	}

	if buildStore == nil {
		store, err := sqlite.NewStore("")
		if err != nil {
			logger.Warn("build cache unavailable: %v", err)
		} else {
			buildStore = store
		}
	}

	if compilerService == nil {
		compilerService = services.NewCompiler()
	}
	if batchService == nil {
		batchService = services.NewBatch(compilerService, renderer, buildStore)
	}
	return nil
}
