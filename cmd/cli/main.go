// Package main provides the CLI tool for the cover-service.
// Uses Cobra for command parsing.
//
// Run with: go run ./cmd/cli generate --class paperback --title "..." ...
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bookforge/cover-service/internal/config"
	"github.com/bookforge/cover-service/internal/cover"
	"github.com/bookforge/cover-service/internal/model"
	"github.com/bookforge/cover-service/internal/service"
	"github.com/bookforge/cover-service/internal/storage"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootCmd creates the root command. Cobra builds a tree of commands:
// cover-cli generate --class digital --title "..."
// cover-cli convert --target hardback --source cover.pdf ...
func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "cover-cli",
		Short: "Cover service CLI tools",
	}

	root.AddCommand(generateCmd())
	root.AddCommand(convertCmd())
	return root
}

// specFlags are the CoverSpec fields shared by generate and convert.
type specFlags struct {
	class       string
	trimWidth   float64
	trimHeight  float64
	pages       int
	stock       string
	title       string
	subtitle    string
	author      string
	description string
	primary     string
	secondary   string
	style       string
	sourcePath  string
	safeArea    bool
	spineText   bool
	outPath     string
}

func (f *specFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.class, "class", "digital", "Cover class: digital, paperback, hardback")
	cmd.Flags().Float64Var(&f.trimWidth, "trim-width", 6.0, "Trim width in inches (print classes)")
	cmd.Flags().Float64Var(&f.trimHeight, "trim-height", 9.0, "Trim height in inches (print classes)")
	cmd.Flags().IntVar(&f.pages, "pages", 0, "Interior page count (print classes)")
	cmd.Flags().StringVar(&f.stock, "stock", "white", "Paper stock: white, cream, color")
	cmd.Flags().StringVar(&f.title, "title", "", "Book title")
	cmd.Flags().StringVar(&f.subtitle, "subtitle", "", "Subtitle")
	cmd.Flags().StringVar(&f.author, "author", "", "Author name")
	cmd.Flags().StringVar(&f.description, "description", "", "Back-panel description (print classes)")
	cmd.Flags().StringVar(&f.primary, "primary", "", "Primary accent color (#rrggbb)")
	cmd.Flags().StringVar(&f.secondary, "secondary", "", "Secondary accent color (#rrggbb)")
	cmd.Flags().StringVar(&f.style, "style", "", "Background style: gradient, solid, minimal")
	cmd.Flags().StringVar(&f.sourcePath, "source", "", "Background image or PDF file")
	cmd.Flags().BoolVar(&f.safeArea, "safe-area", false, "Stamp the barcode safe area (print classes)")
	cmd.Flags().BoolVar(&f.spineText, "spine-text", false, "Render title/author on the spine")
	cmd.Flags().StringVar(&f.outPath, "out", "", "Write the artifact to this path")
}

func (f *specFlags) spec() (model.CoverSpec, error) {
	spec := model.CoverSpec{
		Class:        model.CoverClass(f.class),
		TrimWidthIn:  f.trimWidth,
		TrimHeightIn: f.trimHeight,
		PageCount:    f.pages,
		PaperStock:   model.PaperStock(f.stock),
		Title:        f.title,
		Subtitle:     f.subtitle,
		Author:       f.author,
		Description:  f.description,
		PrimaryHex:   f.primary,
		SecondaryHex: f.secondary,
		Style:        model.Style(f.style),
		AddSafeArea:  f.safeArea,
		AddSpineText: f.spineText,
	}
	if f.sourcePath != "" {
		data, err := os.ReadFile(f.sourcePath)
		if err != nil {
			return spec, fmt.Errorf("reading source: %w", err)
		}
		spec.Source = data
	}
	return spec, nil
}

func generateCmd() *cobra.Command {
	var flags specFlags

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Render a cover from metadata (and an optional background)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(func(ctx context.Context, covers *service.CoverService, logger *zap.Logger) error {
				spec, err := flags.spec()
				if err != nil {
					return err
				}
				gen, err := covers.Generate(ctx, spec)
				if err != nil {
					return err
				}
				return report(gen, flags.outPath, logger)
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func convertCmd() *cobra.Command {
	var flags specFlags
	var target string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Re-target an existing cover document to another cover class",
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.sourcePath == "" {
				return fmt.Errorf("convert requires --source")
			}
			return withService(func(ctx context.Context, covers *service.CoverService, logger *zap.Logger) error {
				spec, err := flags.spec()
				if err != nil {
					return err
				}
				source := spec.Source
				spec.Source = nil
				gen, err := covers.Convert(ctx, source, model.CoverClass(target), spec)
				if err != nil {
					return err
				}
				return report(gen, flags.outPath, logger)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&target, "target", "paperback", "Target class: digital, paperback, hardback")
	return cmd
}

// withService builds the full stack (config, storage, engine) and runs fn
// with a cancellable context wired to Ctrl+C.
func withService(fn func(context.Context, *service.CoverService, *zap.Logger) error) error {
	configPath := os.Getenv("COVER_CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Always use development mode for CLI output.
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(filepath.Dir(cfg.Storage.DatabasePath), 0755); err != nil {
		return fmt.Errorf("creating database directory: %w", err)
	}

	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	fs, err := storage.NewFileSystem(cfg.Storage.CoverDir)
	if err != nil {
		return fmt.Errorf("creating filesystem: %w", err)
	}

	platform := cfg.Platform.Apply(cover.DefaultPlatform())
	var opts []cover.Option
	if cfg.Platform.EnablePDF {
		opts = append(opts, cover.WithPageRasterizer(cover.PopplerRasterizer{}))
	}
	engine, err := cover.New(platform, opts...)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	var normalizer service.Normalizer
	if cfg.Platform.EnableVips {
		normalizer = service.VipsNormalizer{}
	}

	covers := service.NewCoverService(storage.NewCoverRepository(db), fs, engine, normalizer, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("cancelling...")
		cancel()
	}()

	return fn(ctx, covers, logger)
}

func report(gen *service.Generated, outPath string, logger *zap.Logger) error {
	for _, w := range gen.Warnings {
		logger.Warn("cover warning", zap.String("warning", w))
	}
	logger.Info("cover ready",
		zap.String("digest", gen.Cover.Digest),
		zap.String("class", string(gen.Cover.Class)),
		zap.String("format", gen.Cover.Format),
		zap.Int("bytes", len(gen.Data)),
	)

	if outPath == "" {
		return nil
	}
	if err := os.WriteFile(outPath, gen.Data, 0644); err != nil {
		return fmt.Errorf("writing artifact: %w", err)
	}
	logger.Info("artifact written", zap.String("path", outPath))
	return nil
}
