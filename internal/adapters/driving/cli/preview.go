package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/remup-cli/internal/adapters/driving/preview"
	"github.com/custodia-labs/remup-cli/internal/core/domain"
	"github.com/custodia-labs/remup-cli/internal/core/ports/driven"
	"github.com/custodia-labs/remup-cli/internal/core/services"
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Serve a file with live reload",
	Long: `Compile a RemUp file, serve the result over HTTP and recompile on
every save. Connected browsers reload automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

var (
	previewPort       int
	previewReloadPort int
	previewTheme      string
)

func init() {
	previewCmd.Flags().IntVarP(&previewPort, "port", "p", 0, "HTTP port (default 8080)")
	previewCmd.Flags().IntVar(&previewReloadPort, "reload-port", 0, "Websocket reload port (default 35729)")
	previewCmd.Flags().StringVar(&previewTheme, "theme", "", "CSS theme (see 'remup themes')")
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	if compilerService == nil || renderer == nil {
		return errors.New("preview services not configured")
	}

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("preview serves a single file: %w", domain.ErrInvalidInput)
	}
	if !services.IsSourceFile(path) {
		return fmt.Errorf("%s is not a RemUp file: %w", path, domain.ErrUnsupportedFormat)
	}

	port := previewPort
	reloadPort := previewReloadPort
	theme := previewTheme
	if configStore != nil {
		if port == 0 {
			port = configStore.GetInt(driven.KeyPreviewPort)
		}
		if reloadPort == 0 {
			reloadPort = configStore.GetInt(driven.KeyReloadPort)
		}
		if theme == "" {
			theme = configStore.GetString(driven.KeyTheme)
		}
	}
	if port == 0 {
		port = 8080
	}
	if reloadPort == 0 {
		reloadPort = 35729
	}

	server := preview.NewServer(compilerService, renderer, preview.Options{
		SourcePath: path,
		Port:       port,
		ReloadPort: reloadPort,
		Theme:      theme,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("previewing %s at http://localhost:%d\n", path, port)
	return server.Run(ctx)
}
