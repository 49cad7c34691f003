// Package rewrite applies a translator to the template files of a project.
package rewrite

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ZaguanLabs/pugtl"
)

// DefaultRoot is walked when no paths are given.
const DefaultRoot = "views"

// ErrRootNotFound is returned when a root path does not exist.
var ErrRootNotFound = errors.New("path not found (run from project root)")

// skipDirs are never descended into.
var skipDirs = map[string]bool{
	"node_modules": true,
	".git":         true,
}

// Processor rewrites one file's content. *pugtl.Translator implements it.
type Processor interface {
	Process(ctx context.Context, content string, contentType string) (*pugtl.ProcessedContent, error)
}

// Options configures a Rewriter.
type Options struct {
	Roots      []string          // Files or directories (default: views)
	Extensions map[string]string // File extension to content type (default: .pug -> pug)
	Jobs       int               // Files processed at once (default: 1)
	DryRun     bool              // Never write files
	FailFast   bool              // Stop at the first file error
	Logger     zerolog.Logger
	OnFile     func(FileResult) // Called once per file, never concurrently
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path    string      `json:"path"`
	Changed bool        `json:"changed"`
	Stats   pugtl.Stats `json:"stats"`
	Err     error       `json:"-"`
	Error   string      `json:"error,omitempty"`
}

// Report summarises a run. Files are sorted by path.
type Report struct {
	Files    []FileResult  `json:"files"`
	Totals   pugtl.Stats   `json:"totals"`
	Changed  int           `json:"changed"`
	Failed   int           `json:"failed"`
	DryRun   bool          `json:"dry_run"`
	Duration time.Duration `json:"duration_ns"`
}

// Rewriter walks template roots and rewrites files in place.
type Rewriter struct {
	proc Processor
	opts Options

	mu sync.Mutex // serialises OnFile
}

// New creates a Rewriter.
func New(proc Processor, opts Options) *Rewriter {
	if len(opts.Roots) == 0 {
		opts.Roots = []string{DefaultRoot}
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = map[string]string{".pug": "pug"}
	}
	if opts.Jobs < 1 {
		opts.Jobs = 1
	}
	return &Rewriter{proc: proc, opts: opts}
}

// Discover lists the files to process, sorted and without duplicates.
func (r *Rewriter) Discover() ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range r.opts.Roots {
		info, err := os.Stat(root)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", root, ErrRootNotFound)
		}
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			if _, ok := r.contentType(root); !ok {
				return nil, fmt.Errorf("%s: unsupported file type", root)
			}
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && (skipDirs[d.Name()] || strings.HasPrefix(d.Name(), ".")) {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if _, ok := r.contentType(path); ok {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func (r *Rewriter) contentType(path string) (string, bool) {
	ct, ok := r.opts.Extensions[strings.ToLower(filepath.Ext(path))]
	return ct, ok
}

// Run processes every discovered file. File errors are recorded in the
// report; Run itself only fails on discovery errors, or on the first file
// error with FailFast.
func (r *Rewriter) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	files, err := r.Discover()
	if err != nil {
		return nil, err
	}
	r.opts.Logger.Debug().Int("files", len(files)).Int("jobs", r.opts.Jobs).Msg("discovered templates")

	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Jobs)
	for i, path := range files {
		if gctx.Err() != nil {
			results[i] = FileResult{Path: path, Err: gctx.Err()}
			continue
		}
		g.Go(func() error {
			res := r.processFile(gctx, path)
			results[i] = res
			r.notify(res)
			if res.Err != nil && r.opts.FailFast {
				return fmt.Errorf("%s: %w", path, res.Err)
			}
			return nil
		})
	}
	runErr := g.Wait()

	report := &Report{Files: results, DryRun: r.opts.DryRun}
	for i := range report.Files {
		res := &report.Files[i]
		if res.Err != nil {
			res.Error = res.Err.Error()
			report.Failed++
		}
		if res.Changed {
			report.Changed++
		}
		report.Totals.Merge(res.Stats)
	}
	report.Duration = time.Since(start)

	return report, runErr
}

func (r *Rewriter) notify(res FileResult) {
	if r.opts.OnFile == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts.OnFile(res)
}

// processFile rewrites a single file.
func (r *Rewriter) processFile(ctx context.Context, path string) FileResult {
	res := FileResult{Path: path}
	log := r.opts.Logger.With().Str("file", path).Logger()

	contentType, _ := r.contentType(path)

	data, err := os.ReadFile(path)
	if err != nil {
		res.Err = fmt.Errorf("reading: %w", err)
		log.Error().Err(err).Msg("cannot read file")
		return res
	}

	out, err := r.proc.Process(ctx, string(data), contentType)
	if err != nil {
		res.Err = fmt.Errorf("processing: %w", err)
		log.Error().Err(err).Msg("cannot process file")
		return res
	}
	res.Stats = out.Stats

	if !out.Changed || r.opts.DryRun {
		log.Debug().
			Int("spans", out.Stats.Spans).
			Int("candidates", len(out.Stats.Candidates)).
			Msg("unchanged")
		return res
	}

	if err := WriteFileAtomic(path, []byte(out.Content)); err != nil {
		res.Err = fmt.Errorf("writing: %w", err)
		log.Error().Err(err).Msg("cannot write file")
		return res
	}
	res.Changed = true

	log.Info().
		Int("translated", out.Stats.Translated).
		Int("cached", out.Stats.Cached).
		Int("failed", out.Stats.Failed).
		Msg("rewrote file")
	return res
}

// WriteFileAtomic replaces path with data through a temporary file in the
// same directory, keeping the original permissions.
func WriteFileAtomic(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
