package model

import "strings"

// Version is the swupfix release.
const Version = "0.1.0"

// Status is the outcome of processing one section file.
type Status string

const (
	StatusFixed     Status = "fixed"     // Listeners were rewritten
	StatusComplex   Status = "complex"   // Event name present but no listener matched
	StatusUnchanged Status = "unchanged" // Nothing to do
	StatusMissing   Status = "missing"   // File not on disk
)

// Target is a single section template scheduled for rewriting.
type Target struct {
	File       string `json:"file"`        // Name as listed in config (e.g. faq.liquid)
	Path       string `json:"path"`        // Resolved path under the sections directory
	SectionKey string `json:"section_key"` // Namespace for generated dispatch keys
}

// FileResult records what happened to one Target.
type FileResult struct {
	Target       Target   `json:"target"`
	Status       Status   `json:"status"`
	Keys         []string `json:"keys,omitempty"`       // Generated dispatch keys, in source order
	Residual     int      `json:"residual,omitempty"`   // Event references left after the rewrite
	Unbalanced   []string `json:"unbalanced,omitempty"` // Keys whose callback was cut at a nested brace
	Diff         string   `json:"diff,omitempty"`       // Only set on dry runs
	DryRun       bool     `json:"dry_run,omitempty"`
	Replacements int      `json:"replacements"`
}

// Summary is the outcome of a whole run.
type Summary struct {
	Files  []FileResult `json:"files"`
	Fixed  int          `json:"fixed"`
	DryRun bool         `json:"dry_run,omitempty"`
}

// SectionKey derives the dispatch key namespace from a section file name:
// the suffix is dropped and dashes become underscores.
func SectionKey(name, suffix string) string {
	return strings.ReplaceAll(strings.TrimSuffix(name, suffix), "-", "_")
}
