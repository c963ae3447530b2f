package files

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	apperrors "s38cli/internal/errors"
	"s38cli/pkg/contracts/domain"
)

var yearDirRe = regexp.MustCompile(`^\d{4}$`)

// Discovery finds S38 quote files laid out as <root>/<yyyy>/<file>.
type Discovery struct {
	logger *slog.Logger
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(logger *slog.Logger) *Discovery {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discovery{logger: logger.With(slog.String("component", "discovery"))}
}

// FindQuoteFiles returns the quote files under the year folders of root.
// Only folders named with four digits are visited, and only yearOnly when it
// is set. A file matches when its upper-cased name starts with one of
// prefixes. Files are sorted by name within a folder and at most maxPerDir
// are kept per folder (0 keeps all).
func (d *Discovery) FindQuoteFiles(root, yearOnly string, prefixes []string, maxPerDir int) ([]domain.FileInput, error) {
	years, err := d.ListYearDirs(root)
	if err != nil {
		return nil, err
	}

	upper := make([]string, len(prefixes))
	for i, p := range prefixes {
		upper[i] = strings.ToUpper(p)
	}

	var inputs []domain.FileInput
	for _, year := range years {
		if yearOnly != "" && year != yearOnly {
			continue
		}
		dir := filepath.Join(root, year)
		names, err := matchingFiles(dir, upper)
		if err != nil {
			d.logger.Warn("Skipping unreadable year folder",
				slog.String("dir", dir),
				slog.String("error", err.Error()))
			continue
		}
		if maxPerDir > 0 && len(names) > maxPerDir {
			names = names[:maxPerDir]
		}
		for _, name := range names {
			inputs = append(inputs, domain.FileInput{
				Path:     filepath.Join(dir, name),
				YearHint: year,
			})
		}
		d.logger.Debug("Discovered quote files",
			slog.String("year", year),
			slog.Int("files", len(names)))
	}
	return inputs, nil
}

// ListYearDirs returns the sorted names of the four-digit folders in root.
func (d *Discovery) ListYearDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.NewNotFoundError("input root").WithContext("root", root)
		}
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read directory %s", root), err)
	}

	var years []string
	for _, entry := range entries {
		if entry.IsDir() && yearDirRe.MatchString(entry.Name()) {
			years = append(years, entry.Name())
		}
	}
	sort.Strings(years)
	return years, nil
}

func matchingFiles(dir string, prefixes []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToUpper(entry.Name())
		for _, p := range prefixes {
			if strings.HasPrefix(name, p) {
				names = append(names, entry.Name())
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}
