package filedress

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-git/go-billy/v5/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/netajam/filedress/cli"
	"github.com/netajam/filedress/internal/bundle"
	"github.com/netajam/filedress/internal/comment"
	"github.com/netajam/filedress/internal/fs"
	"github.com/netajam/filedress/internal/header"
	"github.com/netajam/filedress/internal/logging"
	"github.com/netajam/filedress/internal/source"
	"github.com/netajam/filedress/internal/structure"
	"github.com/netajam/filedress/model"
)

// ProgressUpdate is a callback function to report progress.
type ProgressUpdate func(current, total int)

// App orchestrates the entire application logic.
type App struct {
	cfg              *cli.Config
	tree             *fs.Tree
	logger           *zap.Logger
	runID            string
	sourceProvider   *source.Provider
	progressCallback ProgressUpdate
}

// Option customizes an App.
type Option func(*App)

// WithTree runs the App on t instead of the directory named in the config.
func WithTree(t *fs.Tree) Option {
	return func(a *App) { a.tree = t }
}

// WithLogger sets the diagnostics logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithSource sets where structure reads its outline and copy delivers
// its bundle.
func WithSource(p *source.Provider) Option {
	return func(a *App) { a.sourceProvider = p }
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

func (e *DetailedError) Unwrap() error {
	return e.Err
}

// New creates a new App instance.
func New(cfg *cli.Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		logger: zap.NewNop(),
		runID:  logging.NewRunID(),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.sourceProvider == nil {
		a.sourceProvider = source.New()
	}
	if a.tree == nil {
		dir := cfg.Directory
		if dir == "" {
			dir = "."
		}
		tree, err := fs.NewOSTree(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to open target directory: %w", err)
		}
		a.tree = tree
	}
	a.logger = a.logger.With(zap.String("run", a.runID), zap.String("command", string(cfg.Command)))
	return a, nil
}

// SetProgressCallback sets a function to be called for progress updates.
func (a *App) SetProgressCallback(cb ProgressUpdate) {
	a.progressCallback = cb
}

// RunID identifies this App's invocation in logs and in the summary.
func (a *App) RunID() string {
	return a.runID
}

// Execute runs the configured command.
func (a *App) Execute(ctx context.Context) (summary model.Summary, err error) {
	// Centralized panic recovery.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	a.logger.Debug("starting", zap.String("root", a.tree.Root))

	switch a.cfg.Command {
	case cli.Add:
		summary, err = a.rewrite(ctx, a.addHeader)
	case cli.Remove:
		summary, err = a.rewrite(ctx, a.removeHeader)
	case cli.Clean:
		summary, err = a.rewrite(ctx, a.cleanComments)
	case cli.Copy:
		summary, err = a.copyFiles(ctx)
	case cli.Structure:
		summary, err = a.createStructure()
	default:
		return model.Summary{}, fmt.Errorf("unknown command %q", a.cfg.Command)
	}

	summary.Command = string(a.cfg.Command)
	summary.RunID = a.runID
	summary.Sort()
	return summary, err
}

// files lists the files the command applies to.
func (a *App) files() ([]string, error) {
	exclude := append(append([]string(nil), fs.DefaultExclude...), a.cfg.Exclude...)
	files, err := a.tree.Files(fs.Filter{
		Extensions: a.cfg.Extensions(),
		MaxDepth:   a.cfg.Depth,
		Exclude:    exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	a.logger.Debug("found files", zap.Int("count", len(files)))
	return files, nil
}

func (a *App) workers() int {
	if a.cfg.Workers > 0 {
		return a.cfg.Workers
	}
	return runtime.NumCPU()
}

// run applies fn to every file on a bounded pool. A file that fails is
// reported in its outcome; only cancellation of ctx stops the batch.
func (a *App) run(ctx context.Context, files []string, fn func(rel string) model.Outcome) ([]model.Outcome, error) {
	total := len(files)
	outcomes := make([]model.Outcome, total)
	if a.progressCallback != nil {
		a.progressCallback(0, total)
	}

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers())
	for i, rel := range files {
		if gctx.Err() != nil {
			break
		}
		i, rel := i, rel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o := a.guard(rel, fn)
			if o.Status == model.StatusFailed {
				a.logger.Debug("file failed", zap.String("path", rel), zap.Error(o.Err))
			}
			outcomes[i] = o
			if a.progressCallback != nil {
				a.progressCallback(int(done.Add(1)), total)
			}
			return nil
		})
	}
	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	finished := outcomes[:0]
	for _, o := range outcomes {
		if o.Path != "" {
			finished = append(finished, o)
		}
	}
	return finished, err
}

// guard runs fn for one file and turns a panic into a failed outcome.
func (a *App) guard(rel string, fn func(rel string) model.Outcome) (o model.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
			a.logger.Error("panic while processing file", zap.String("path", rel), zap.Any("panic", r))
			o = failed(rel, err)
		}
	}()
	return fn(rel)
}

// rewrite runs one of the in-place commands over every matching file.
func (a *App) rewrite(ctx context.Context, fn func(rel string) model.Outcome) (model.Summary, error) {
	files, err := a.files()
	if err != nil {
		return model.Summary{}, err
	}
	if len(files) == 0 {
		return model.Summary{Message: "No matching files found."}, nil
	}

	outcomes, err := a.run(ctx, files, fn)
	summary := model.Summary{
		Outcomes: outcomes,
		Message:  fmt.Sprintf("'%s' command finished.", a.cfg.Command),
	}
	if err != nil {
		return summary, fmt.Errorf("interrupted: %w", err)
	}
	return summary, nil
}

func failed(rel string, err error) model.Outcome {
	return model.Outcome{Path: rel, Status: model.StatusFailed, Err: err}
}

func skipped(rel, detail string) model.Outcome {
	return model.Outcome{Path: rel, Status: model.StatusSkipped, Detail: detail}
}

func (a *App) addHeader(rel string) model.Outcome {
	content, err := a.tree.ReadFile(rel)
	if err != nil {
		return failed(rel, err)
	}
	display := fs.DisplayPath(a.tree.Root, rel, a.cfg.Up)
	updated, action := header.Add(content, comment.ForPath(rel), display, a.cfg.Force)
	if action == header.Exists {
		return skipped(rel, "Header exists")
	}
	if err := a.tree.WriteFile(rel, updated); err != nil {
		return failed(rel, err)
	}
	if action == header.Replaced {
		return model.Outcome{Path: rel, Status: model.StatusReplaced}
	}
	return model.Outcome{Path: rel, Status: model.StatusAdded}
}

func (a *App) removeHeader(rel string) model.Outcome {
	content, err := a.tree.ReadFile(rel)
	if err != nil {
		return failed(rel, err)
	}
	updated, ok := header.Remove(content, comment.ForPath(rel))
	if !ok {
		return skipped(rel, "No header found")
	}
	if err := a.tree.WriteFile(rel, updated); err != nil {
		return failed(rel, err)
	}
	return model.Outcome{Path: rel, Status: model.StatusRemoved}
}

func (a *App) cleanComments(rel string) model.Outcome {
	content, err := a.tree.ReadFile(rel)
	if err != nil {
		return failed(rel, err)
	}
	updated, changed := comment.StripText(content, comment.ForPath(rel))
	if !changed {
		return skipped(rel, "No comments to clean")
	}
	if err := a.tree.WriteFile(rel, updated); err != nil {
		return failed(rel, err)
	}
	return model.Outcome{Path: rel, Status: model.StatusCleaned}
}

// copyFiles reads every matching file on the pool and bundles them in
// path order.
func (a *App) copyFiles(ctx context.Context) (model.Summary, error) {
	files, err := a.files()
	if err != nil {
		return model.Summary{}, err
	}
	if len(files) == 0 {
		return model.Summary{Message: "No matching files found to copy."}, nil
	}

	contents := make(map[string]string, len(files))
	var mu sync.Mutex
	outcomes, err := a.run(ctx, files, func(rel string) model.Outcome {
		content, err := a.tree.ReadFile(rel)
		if err != nil {
			return failed(rel, err)
		}
		mu.Lock()
		contents[rel] = content
		mu.Unlock()
		return model.Outcome{Path: rel, Status: model.StatusCopied}
	})
	if err != nil {
		return model.Summary{Outcomes: outcomes}, fmt.Errorf("interrupted: %w", err)
	}

	var b bundle.Builder
	for _, rel := range files {
		content, ok := contents[rel]
		if !ok {
			continue
		}
		b.Add(bundle.Entry{Path: fs.DisplayPath(a.tree.Root, rel, a.cfg.Up), Content: content})
	}
	summary := model.Summary{Outcomes: outcomes}
	if b.Files() == 0 {
		summary.Message = "No files could be read. Nothing was copied."
		return summary, nil
	}

	if a.cfg.Output != "" {
		out, err := filepath.Abs(a.cfg.Output)
		if err != nil {
			return summary, fmt.Errorf("failed to resolve output path: %w", err)
		}
		if err := util.WriteFile(fs.NewNative(), out, []byte(b.String()), 0o644); err != nil {
			return summary, fmt.Errorf("failed to write %s: %w", out, err)
		}
		summary.Message = fmt.Sprintf("Wrote %d files (%d bytes) to %s.", b.Files(), b.Bytes(), a.cfg.Output)
		return summary, nil
	}

	if err := a.sourceProvider.Copy(b.String()); err != nil {
		return summary, err
	}
	summary.Message = fmt.Sprintf("Copied %d files (%d bytes) to the clipboard.", b.Files(), b.Bytes())
	return summary, nil
}

// createStructure builds the outline read from the source below the tree.
func (a *App) createStructure() (model.Summary, error) {
	content, err := a.sourceProvider.GetContent(a.cfg.InputFile)
	if err != nil {
		return model.Summary{}, err
	}
	if strings.TrimSpace(content) == "" {
		return model.Summary{Message: "Source is empty. Nothing to create."}, nil
	}

	root := structure.Build(structure.Lines(content), a.cfg.Indent)
	if len(root.Children) == 0 {
		return model.Summary{Message: "No entries found in the outline."}, nil
	}

	entries, err := structure.Materialize(a.tree, root)
	summary := model.Summary{Message: "Structure created."}
	for _, e := range entries {
		o := model.Outcome{Path: e.Path, Status: model.StatusCreated}
		switch {
		case e.Dir:
			o.Detail = "dir"
		case !e.Created:
			o = skipped(e.Path, "File exists")
		}
		summary.Outcomes = append(summary.Outcomes, o)
	}
	if err != nil {
		return summary, fmt.Errorf("failed to create structure: %w", err)
	}
	return summary, nil
}

// IsInterrupted reports whether err comes from a cancelled run.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
