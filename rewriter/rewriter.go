package rewriter

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Rewriter replaces LocalURL string literals with an interpolated constant.
type Rewriter struct {
	cfg         Config
	pattern     *regexp.Regexp
	declaration string
	imported    *regexp.Regexp
	directives  []string
}

// New creates a Rewriter for cfg.
func New(cfg Config) (*Rewriter, error) {
	if cfg.Constant == "" {
		return nil, fmt.Errorf("constant name is empty")
	}
	if cfg.ImportPath == "" {
		return nil, fmt.Errorf("import path is empty")
	}

	// RE2 has no backreferences, so each delimiter gets its own alternative.
	var alts []string
	for _, q := range []string{"'", `"`, "`"} {
		alts = append(alts, q+regexp.QuoteMeta(LocalURL)+"([^"+q+"]*)"+q)
	}

	path := regexp.QuoteMeta(cfg.ImportPath)
	constant := regexp.QuoteMeta(cfg.Constant)
	imported := regexp.MustCompile(`import\s*\{[^}]*\b` + constant + `\b[^}]*\}\s*from\s*(?:'` + path + `'|"` + path + `")`)

	var directives []string
	if cfg.Directive != "" {
		directives = []string{"'" + cfg.Directive + "';", `"` + cfg.Directive + `";`}
	}

	return &Rewriter{
		cfg:         cfg,
		pattern:     regexp.MustCompile(strings.Join(alts, "|")),
		declaration: fmt.Sprintf("import { %s } from '%s';", cfg.Constant, cfg.ImportPath),
		imported:    imported,
		directives:  directives,
	}, nil
}

// Declaration returns the import line inserted into rewritten files.
func (r *Rewriter) Declaration() string {
	return r.declaration
}

// HasDeclaration reports whether content already imports the constant.
func (r *Rewriter) HasDeclaration(content string) bool {
	return strings.Contains(content, r.declaration) || r.imported.MatchString(content)
}

// Rewrite turns every quoted LocalURL literal in content into a template
// literal referencing the constant and adds the import when it is missing.
func (r *Rewriter) Rewrite(content string) Result {
	res := Result{Content: content}

	res.Content = r.pattern.ReplaceAllStringFunc(content, func(m string) string {
		res.Matches++
		// Delimiter and LocalURL are fixed width; the suffix sits between them.
		suffix := m[1+len(LocalURL) : len(m)-1]
		return "`${" + r.cfg.Constant + "}" + suffix + "`"
	})
	if !res.Changed() || r.HasDeclaration(res.Content) {
		return res
	}

	lines := strings.Split(res.Content, "\n")
	at := 0
	if r.isDirective(lines[0]) {
		at = 1
	}
	lines = append(lines[:at], append([]string{r.declaration}, lines[at:]...)...)
	res.Content = strings.Join(lines, "\n")
	res.ImportInserted = true
	return res
}

func (r *Rewriter) isDirective(line string) bool {
	line = strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
	for _, d := range r.directives {
		if line == d {
			return true
		}
	}
	return false
}

// RewriteFile rewrites the file at path in place. The file is written only
// when its content changes; no backup is kept.
func (r *Rewriter) RewriteFile(path string) (Result, error) {
	_, res, err := r.rewriteFile(path)
	return res, err
}

func (r *Rewriter) rewriteFile(path string) (string, Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", Result{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", Result{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	original := string(data)
	res := r.Rewrite(original)
	if !res.Changed() || r.cfg.DryRun {
		return original, res, nil
	}
	if err := os.WriteFile(path, []byte(res.Content), info.Mode().Perm()); err != nil {
		return "", Result{}, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return original, res, nil
}
