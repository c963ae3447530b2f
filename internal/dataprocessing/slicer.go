package dataprocessing

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
)

// ErrFieldRange is returned when a layout field lies outside the line.
var ErrFieldRange = errors.New("field range outside line")

// RawLine is one record line and where it came from.
type RawLine struct {
	File   string
	LineNo int
	Bytes  []byte
}

// DecodedFields maps field names to their decoded, trimmed text.
type DecodedFields map[string]string

// Slicer extracts and decodes byte ranges of record lines. It is safe for
// concurrent use.
type Slicer struct {
	enc encoding.Encoding
}

// NewSlicer returns a slicer decoding with enc.
func NewSlicer(enc encoding.Encoding) *Slicer {
	return &Slicer{enc: enc}
}

// Decode converts b to UTF-8. Bytes that do not form a character become
// U+FFFD; Decode never fails.
func (s *Slicer) Decode(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	out, err := s.enc.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), string(utf8.RuneError))
	}
	return string(out)
}

// SliceRaw decodes line[start:end] without trimming. A range running past the
// end of the line is truncated.
func (s *Slicer) SliceRaw(line []byte, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(line) {
		end = len(line)
	}
	if start >= end {
		return ""
	}
	return s.Decode(line[start:end])
}

// Slice decodes line[start:end] and trims surrounding whitespace.
func (s *Slicer) Slice(line []byte, start, end int) string {
	return strings.TrimSpace(s.SliceRaw(line, start, end))
}

// Preview decodes the whole line and keeps at most n characters.
func (s *Slicer) Preview(line []byte, n int) string {
	text := s.Decode(line)
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	i, count := 0, 0
	for i = range text {
		if count == n {
			break
		}
		count++
	}
	return text[:i]
}

// Extract decodes every field of layout from line. It fails with
// ErrFieldRange when a field does not fit inside line.
func (s *Slicer) Extract(layout *Layout, line []byte) (DecodedFields, error) {
	fields := make(DecodedFields, len(layout.order))
	for _, f := range layout.order {
		if f.End > len(line) {
			return nil, fmt.Errorf("%s [%d:%d] of %d bytes: %w", f.Name, f.Start, f.End, len(line), ErrFieldRange)
		}
		fields[f.Name] = s.Slice(line, f.Start, f.End)
	}
	return fields, nil
}
