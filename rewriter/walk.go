package rewriter

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/mod/sumdb/dirhash"
)

// Run rewrites every candidate file under root, one file at a time.
// The first failing file aborts the run; files already rewritten stay rewritten.
func (r *Rewriter) Run(ctx context.Context, root string) (*Report, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	ignore, err := r.loadIgnore(root)
	if err != nil {
		return nil, err
	}

	files, err := r.candidates(root, ignore)
	if err != nil {
		return nil, err
	}

	report := &Report{Files: make([]FileResult, 0)}
	final := make(map[string]string, len(files))

	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := filepath.Join(root, filepath.FromSlash(rel))

		original, res, err := r.rewriteFile(path)
		if err != nil {
			return nil, err
		}
		report.Scanned++
		final[rel] = res.Content
		if !res.Changed() {
			continue
		}

		fr := FileResult{
			Path:           rel,
			Matches:        res.Matches,
			ImportInserted: res.ImportInserted,
		}
		if r.cfg.DryRun {
			fr.Diff = Diff(original, res.Content)
		}
		slog.Debug("rewrote file", "path", rel, "matches", res.Matches, "import", res.ImportInserted)
		report.Files = append(report.Files, fr)
	}

	report.Digest, err = dirhash.Hash1(files, func(name string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(final[name])), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to hash tree: %w", err)
	}
	return report, nil
}

// candidates returns the slash-separated paths, relative to root, of every
// file the rewriter may touch, in lexical order.
func (r *Rewriter) candidates(root string, ignore *gitignore.GitIgnore) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if isExcludedDir(d.Name(), r.cfg.Exclude) || (ignore != nil && ignore.MatchesPath(rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !hasExtension(d.Name(), r.cfg.Extensions) {
			return nil
		}
		if r.skip(rel) || (ignore != nil && ignore.MatchesPath(rel)) {
			return nil
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}
	return files, nil
}

func (r *Rewriter) skip(rel string) bool {
	if hasExcludedElem(rel, r.cfg.Exclude) {
		return true
	}
	return r.cfg.ConfigFile != "" && HasPathSuffix(rel, r.cfg.ConfigFile)
}

func (r *Rewriter) loadIgnore(root string) (*gitignore.GitIgnore, error) {
	if r.cfg.IgnoreFile == "" {
		return nil, nil
	}
	path := r.cfg.IgnoreFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	ignore, err := gitignore.CompileIgnoreFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load ignore file: %w", err)
	}
	return ignore, nil
}
