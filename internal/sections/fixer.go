// Package sections applies the listener rewrite to theme section files.
package sections

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"swupfix/internal/diff"
	"swupfix/internal/model"
	"swupfix/internal/rewrite"
)

// Fixer rewrites section files under a single directory, one at a time.
type Fixer struct {
	fs     afero.Fs
	dir    string
	suffix string
	rw     *rewrite.Rewriter
	dryRun bool
	log    *zap.Logger
}

// Option configures a Fixer.
type Option func(*Fixer)

// WithDryRun leaves files untouched and attaches a diff to each fixed result.
func WithDryRun(dryRun bool) Option {
	return func(f *Fixer) { f.dryRun = dryRun }
}

// WithSuffix sets the file suffix stripped when deriving section keys.
func WithSuffix(suffix string) Option {
	return func(f *Fixer) { f.suffix = suffix }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fixer) { f.log = l }
}

// New creates a Fixer for the section files in dir.
func New(fsys afero.Fs, dir string, rw *rewrite.Rewriter, opts ...Option) *Fixer {
	f := &Fixer{
		fs:     fsys,
		dir:    dir,
		suffix: ".liquid",
		rw:     rw,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Dir returns the sections directory.
func (f *Fixer) Dir() string { return f.dir }

// Targets resolves file names against the sections directory, keeping
// their order.
func (f *Fixer) Targets(files []string) []model.Target {
	targets := make([]model.Target, 0, len(files))
	for _, name := range files {
		targets = append(targets, model.Target{
			File:       name,
			Path:       filepath.Join(f.dir, name),
			SectionKey: model.SectionKey(name, f.suffix),
		})
	}
	return targets
}

// Fix rewrites a single section file. A missing file is reported as
// StatusMissing, not as an error. Any other I/O failure is returned.
func (f *Fixer) Fix(t model.Target) (model.FileResult, error) {
	res := model.FileResult{Target: t, Status: model.StatusUnchanged, DryRun: f.dryRun}
	log := f.log.With(zap.String("file", t.File))

	info, err := f.fs.Stat(t.Path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug("section not found, skipping", zap.String("path", t.Path))
		res.Status = model.StatusMissing
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("fix %s: %w", t.File, err)
	}

	data, err := afero.ReadFile(f.fs, t.Path)
	if err != nil {
		return res, fmt.Errorf("fix %s: %w", t.File, err)
	}
	content := string(data)

	out := f.rw.Rewrite(content, t.SectionKey)
	res.Residual = out.Residual
	if !out.Changed {
		if strings.Contains(content, f.rw.Event()) {
			res.Status = model.StatusComplex
			log.Debug("event referenced but no listener matched", zap.Int("references", out.Residual))
		}
		return res, nil
	}

	res.Status = model.StatusFixed
	res.Replacements = len(out.Replacements)
	res.Keys = out.Keys()
	res.Unbalanced = out.Unbalanced()
	for _, rep := range out.Replacements {
		log.Debug("rewrote listener",
			zap.String("key", rep.Key),
			zap.Int("line", model.LineNumber(content, rep.Offset)),
			zap.String("callback", rep.Callback))
		if rep.Unbalanced {
			log.Warn("callback cut short at a nested block, check the output",
				zap.String("key", rep.Key),
				zap.Int("line", model.LineNumber(content, rep.Offset)))
		}
	}

	if f.dryRun {
		d, err := diff.Diff("a/"+t.File, data, "b/"+t.File, []byte(out.Content))
		if err != nil {
			log.Warn("diff unavailable", zap.Error(err))
		}
		res.Diff = string(d)
		return res, nil
	}

	if err := afero.WriteFile(f.fs, t.Path, []byte(out.Content), info.Mode().Perm()); err != nil {
		return res, fmt.Errorf("fix %s: %w", t.File, err)
	}
	return res, nil
}

// Run fixes targets in order, calling fn after each file. It stops at the
// first I/O error.
func (f *Fixer) Run(targets []model.Target, fn func(model.FileResult)) (model.Summary, error) {
	sum := model.Summary{DryRun: f.dryRun}
	for _, t := range targets {
		res, err := f.Fix(t)
		if err != nil {
			return sum, err
		}
		if res.Status == model.StatusFixed {
			sum.Fixed++
		}
		sum.Files = append(sum.Files, res)
		if fn != nil {
			fn(res)
		}
	}
	return sum, nil
}
