package rewriter

// LocalURL is the only literal rewritten.
const LocalURL = "http://localhost:3000"

// Config holds everything the rewriter needs to know about the target tree.
type Config struct {
	// Constant is the identifier interpolated in place of LocalURL.
	Constant string
	// ImportPath is the module the constant is imported from.
	ImportPath string
	// Directive is a leading framework directive such as "use client".
	Directive  string
	Extensions []string
	// Exclude lists directory names that are never descended into.
	Exclude []string
	// ConfigFile is the slash-separated path of the file defining Constant.
	ConfigFile string
	// IgnoreFile optionally names a gitignore-style file with extra exclusions.
	IgnoreFile string
	DryRun     bool
}

// DefaultConfig returns the configuration for a Next.js frontend.
func DefaultConfig() Config {
	return Config{
		Constant:   "API_URL",
		ImportPath: "@/src/config/api",
		Directive:  "use client",
		Extensions: []string{".tsx", ".ts", ".js"},
		Exclude:    []string{"node_modules", ".next", ".git"},
		ConfigFile: "src/config/api.ts",
	}
}

// Result is the outcome of rewriting one piece of content.
type Result struct {
	Content        string
	Matches        int
	ImportInserted bool
}

// Changed reports whether any literal was rewritten.
func (r Result) Changed() bool {
	return r.Matches > 0
}

// FileResult describes a file that was (or in dry-run mode would be) rewritten.
type FileResult struct {
	Path           string `json:"path"`
	Matches        int    `json:"matches"`
	ImportInserted bool   `json:"importInserted"`
	Diff           string `json:"diff,omitempty"`
}

// Report summarizes a run over a tree.
type Report struct {
	Scanned int          `json:"scanned"`
	Files   []FileResult `json:"files"`
	// Digest is a dirhash over the final content of every scanned file.
	Digest string `json:"digest"`
}
