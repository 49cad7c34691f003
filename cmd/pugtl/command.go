package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ZaguanLabs/pugtl"
	"github.com/ZaguanLabs/pugtl/cache"
	"github.com/ZaguanLabs/pugtl/internal/logging"
	"github.com/ZaguanLabs/pugtl/rewrite"
)

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pugtl [paths...]",
		Short: pugtl.Description,
		Long: `pugtl finds Spanish display text in Pug templates and replaces it with an
English translation, leaving markup, code, placeholders and formatting as
they were.

Examples:
  pugtl                               # rewrite ./views/**/*.pug
  pugtl --dry-run views/admin         # list what would be translated
  pugtl -p openai --jobs 4 --html     # use OpenAI, include .html views
  pugtl --redis-url redis://localhost:6379/0 --cache-export cache.json`,
		Version:       pugtl.FullVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return execute(ctx, cfg, stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate(fmt.Sprintf("{{.Name}} {{.Version}}\n  repo:  %s\n  built: %s\n", pugtl.Repository, pugtl.BuildDate))
	setupFlags(cmd.Flags())

	return cmd
}

// execute runs one translation pass over cfg.Paths.
func execute(ctx context.Context, cfg *config, stdout, stderr io.Writer) error {
	start := time.Now()

	logger, err := logging.New(stderr, logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Quiet:  cfg.Quiet,
	})
	if err != nil {
		return err
	}

	store, closeStore, err := buildCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	translator, err := buildTranslator(ctx, cfg, store, logger)
	if err != nil {
		return err
	}

	extensions := map[string]string{".pug": "pug"}
	if cfg.HTML {
		extensions[".html"] = "html"
	}

	opts := rewrite.Options{
		Roots:      cfg.Paths,
		Extensions: extensions,
		Jobs:       cfg.Jobs,
		DryRun:     cfg.DryRun,
		FailFast:   cfg.FailFast,
		Logger:     logger,
	}

	if !cfg.Quiet && !cfg.JSON && logging.IsTerminal(stderr) {
		files, err := rewrite.New(translator, opts).Discover()
		if err != nil {
			return err
		}
		bar := progressbar.NewOptions(len(files),
			progressbar.OptionSetWriter(stderr),
			progressbar.OptionSetDescription("translating"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		defer bar.Finish()
		opts.OnFile = func(rewrite.FileResult) { bar.Add(1) }

		// keep info lines from tearing the bar
		if logger.GetLevel() < zerolog.WarnLevel && logger.GetLevel() != zerolog.DebugLevel {
			opts.Logger = logger.Level(zerolog.WarnLevel)
		}
	}

	report, runErr := rewrite.New(translator, opts).Run(ctx)
	if report == nil {
		return runErr
	}

	if cfg.CacheExport != "" && !cfg.DryRun {
		if err := exportCache(cfg.CacheExport, store, cfg.Paths, logger); err != nil {
			logger.Error().Err(err).Str("path", cfg.CacheExport).Msg("cache export failed")
		}
	}

	report.Duration = time.Since(start)
	if cfg.JSON {
		if err := writeJSONReport(stdout, report); err != nil {
			return err
		}
	} else {
		writeTextReport(stdout, report)
	}

	if runErr != nil {
		return runErr
	}
	if report.Failed > 0 {
		return errFilesFailed
	}
	return nil
}

func exportCache(path string, store cache.Snapshotter, roots []string, logger zerolog.Logger) error {
	meta := map[string]string{"generator": pugtl.Name + " " + pugtl.FullVersion()}
	for i, root := range roots {
		meta[fmt.Sprintf("root.%d", i)] = root
	}

	n, err := cache.NewExporter(store).ExportToFile(path, meta)
	if err != nil {
		return err
	}
	logger.Info().Int("entries", n).Str("path", path).Msg("exported cache")
	return nil
}
