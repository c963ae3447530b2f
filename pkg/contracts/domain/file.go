package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
)

var yearDirRe = regexp.MustCompile(`^\d{4}$`)

// FileInput is a quote file handed over by discovery together with the year
// hint derived from its enclosing directory.
type FileInput struct {
	Path     string `json:"path"`
	YearHint string `json:"year_hint,omitempty"`
}

// NewFileInput builds a FileInput for path, deriving the year hint from the
// parent directory name.
func NewFileInput(path string) FileInput {
	return FileInput{Path: path, YearHint: YearHintFromDir(path)}
}

// YearHintFromDir returns the enclosing directory name of path when it is
// exactly four digits, otherwise "".
func YearHintFromDir(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if yearDirRe.MatchString(dir) {
		return dir
	}
	return ""
}

// FileDescriptor identifies a file being decoded and its resolved trade date.
type FileDescriptor struct {
	Path      string `json:"path"`
	Name      string `json:"name"`
	YearHint  string `json:"year_hint,omitempty"`
	TradeDate string `json:"trade_date"`
}

// NewFileDescriptor builds a descriptor for in without a trade date.
func NewFileDescriptor(in FileInput) FileDescriptor {
	return FileDescriptor{
		Path:     in.Path,
		Name:     filepath.Base(in.Path),
		YearHint: in.YearHint,
	}
}

// FileResult holds everything decoded from one file.
type FileResult struct {
	Descriptor  FileDescriptor
	Records     []ParsedQuoteRecord
	Diagnostics []DiagnosticRecord
	// DataLines counts non-empty lines after the header rule was applied.
	DataLines int
}

// Accepted returns the number of accepted records.
func (r FileResult) Accepted() int { return len(r.Records) }

// Rejected returns the number of line-level diagnostics.
func (r FileResult) Rejected() int {
	n := 0
	for _, d := range r.Diagnostics {
		if !d.IsFileLevel() {
			n++
		}
	}
	return n
}

// Failed reports whether the file could not be read at all.
func (r FileResult) Failed() bool {
	for _, d := range r.Diagnostics {
		if d.IsFileLevel() {
			return true
		}
	}
	return false
}

// Audit checks that every non-empty data line produced exactly one outcome.
func (r FileResult) Audit() error {
	if got := r.Accepted() + r.Rejected(); got != r.DataLines {
		return fmt.Errorf("%s: accepted %d + rejected %d != data lines %d",
			r.Descriptor.Name, r.Accepted(), r.Rejected(), r.DataLines)
	}
	return nil
}
