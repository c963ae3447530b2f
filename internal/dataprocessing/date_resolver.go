package dataprocessing

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"s38cli/pkg/contracts/domain"
)

// EpochDate is the date of last resort.
const EpochDate = "19700101"

const dateLayout = "20060102"

var (
	headerDateRe  = regexp.MustCompile(`\d{8}`)
	filenameTagRe = regexp.MustCompile(`\((\d{3,8})\)`)
)

// DateStrategy proposes a YYYYMMDD trade date for a file, or reports no match.
type DateStrategy interface {
	Name() string
	Resolve(ctx context.Context, desc domain.FileDescriptor) (string, bool)
}

// HeaderDate looks for an 8-digit run in the first MaxLines lines of the
// file, decoded with Slicer.
type HeaderDate struct {
	Slicer   *Slicer
	MaxLines int
}

func (HeaderDate) Name() string { return "header" }

func (h HeaderDate) Resolve(ctx context.Context, desc domain.FileDescriptor) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	f, err := os.Open(desc.Path)
	if err != nil {
		return "", false
	}
	defer f.Close()

	maxLines := h.MaxLines
	if maxLines <= 0 {
		maxLines = 3
	}
	r := bufio.NewReader(f)
	for i := 0; i < maxLines; i++ {
		line, err := r.ReadBytes('\n')
		if len(line) > 0 {
			if m := headerDateRe.FindString(h.Slicer.Decode(line)); m != "" {
				return m, true
			}
		}
		if err != nil {
			break
		}
	}
	return "", false
}

// FilenameTag reads a parenthesized 3 to 8 digit tag from the file name. A
// four digit month-day tag (three digit tags are zero padded) is combined
// with the year hint; an eight digit tag is a full date.
type FilenameTag struct{}

func (FilenameTag) Name() string { return "filename" }

func (FilenameTag) Resolve(_ context.Context, desc domain.FileDescriptor) (string, bool) {
	m := filenameTagRe.FindStringSubmatch(desc.Name)
	if m == nil {
		return "", false
	}
	tag := m[1]
	if len(tag) < 4 {
		tag = strings.Repeat("0", 4-len(tag)) + tag
	}
	switch {
	case len(tag) == 4 && desc.YearHint != "":
		return desc.YearHint + tag, true
	case len(tag) == 8:
		return tag, true
	}
	return "", false
}

// YearStart falls back to January 1st of the hinted year.
type YearStart struct{}

func (YearStart) Name() string { return "year_start" }

func (YearStart) Resolve(_ context.Context, desc domain.FileDescriptor) (string, bool) {
	if desc.YearHint == "" {
		return "", false
	}
	return desc.YearHint + "0101", true
}

// Epoch always answers EpochDate.
type Epoch struct{}

func (Epoch) Name() string { return "epoch" }

func (Epoch) Resolve(context.Context, domain.FileDescriptor) (string, bool) {
	return EpochDate, true
}

// DateResolver runs strategies in order; the first accepted candidate wins.
// With calendar validation on, a candidate that is not a real date falls
// through to the next strategy.
type DateResolver struct {
	strategies       []DateStrategy
	validateCalendar bool
	logger           *slog.Logger
}

// NewDateResolver builds a resolver from strategies.
func NewDateResolver(validateCalendar bool, strategies ...DateStrategy) *DateResolver {
	return &DateResolver{
		strategies:       strategies,
		validateCalendar: validateCalendar,
		logger:           slog.Default().With(slog.String("component", "date_resolver")),
	}
}

// DefaultDateResolver chains header, filename, year start and epoch.
func DefaultDateResolver(slicer *Slicer, validateCalendar bool) *DateResolver {
	return NewDateResolver(validateCalendar,
		HeaderDate{Slicer: slicer, MaxLines: 3},
		FilenameTag{},
		YearStart{},
		Epoch{},
	)
}

// Resolve never fails: when no strategy answers it returns EpochDate.
func (r *DateResolver) Resolve(ctx context.Context, desc domain.FileDescriptor) string {
	for _, s := range r.strategies {
		candidate, ok := s.Resolve(ctx, desc)
		if !ok {
			continue
		}
		if r.validateCalendar && !IsCalendarDate(candidate) {
			r.logger.DebugContext(ctx, "Rejected date candidate",
				slog.String("file", desc.Name),
				slog.String("strategy", s.Name()),
				slog.String("candidate", candidate))
			continue
		}
		r.logger.DebugContext(ctx, "Resolved trade date",
			slog.String("file", desc.Name),
			slog.String("strategy", s.Name()),
			slog.String("trade_date", candidate))
		return candidate
	}
	return EpochDate
}

// IsCalendarDate reports whether s is a valid YYYYMMDD date.
func IsCalendarDate(s string) bool {
	if len(s) != 8 {
		return false
	}
	_, err := time.Parse(dateLayout, s)
	return err == nil
}
