package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "s38cli/internal/errors"
	"s38cli/internal/shared/testutil"
	"s38cli/pkg/contracts/domain"
)

var defaultPrefixes = []string{"STKT2QUOTESN", "STKWQUOTES"}

// buildTree creates files (paths relative to root, empty content).
func buildTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, nil, 0644))
	}
}

func names(inputs []domain.FileInput) []string {
	out := make([]string, len(inputs))
	for i, in := range inputs {
		out[i] = filepath.Base(filepath.Dir(in.Path)) + "/" + filepath.Base(in.Path)
	}
	return out
}

func TestFindQuoteFiles(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root,
		"2020/STKT2QUOTESN(0103).TXT",
		"2020/STKT2QUOTESN(0102).TXT",
		"2020/stkwquotes(0104).txt",
		"2020/README.TXT",
		"2019/STKWQUOTES(1231).TXT",
		"misc/STKT2QUOTESN(0101).TXT",
		"20201/STKT2QUOTESN(0101).TXT",
		"STKT2QUOTESN(0101).TXT",
	)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "2020", "STKT2QUOTESN-dir"), 0755))

	tests := []struct {
		name      string
		yearOnly  string
		prefixes  []string
		maxPerDir int
		want      []string
	}{
		{
			name:     "all year folders",
			prefixes: defaultPrefixes,
			want: []string{
				"2019/STKWQUOTES(1231).TXT",
				"2020/STKT2QUOTESN(0102).TXT",
				"2020/STKT2QUOTESN(0103).TXT",
				"2020/stkwquotes(0104).txt",
			},
		},
		{
			name:     "year only",
			yearOnly: "2019",
			prefixes: defaultPrefixes,
			want:     []string{"2019/STKWQUOTES(1231).TXT"},
		},
		{
			name:      "capped per folder",
			prefixes:  defaultPrefixes,
			maxPerDir: 1,
			want: []string{
				"2019/STKWQUOTES(1231).TXT",
				"2020/STKT2QUOTESN(0102).TXT",
			},
		},
		{
			name:     "lower case prefix",
			prefixes: []string{"stkwquotes"},
			want: []string{
				"2019/STKWQUOTES(1231).TXT",
				"2020/stkwquotes(0104).txt",
			},
		},
		{
			name:     "unknown year",
			yearOnly: "1999",
			prefixes: defaultPrefixes,
			want:     []string{},
		},
	}

	logger, _ := testutil.NewTestLogger(t)
	d := NewDiscovery(logger)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := d.FindQuoteFiles(root, tt.yearOnly, tt.prefixes, tt.maxPerDir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(got))
		})
	}
}

func TestFindQuoteFiles_YearHint(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "2021/STKT2QUOTESN(0315).TXT")

	got, err := NewDiscovery(nil).FindQuoteFiles(root, "", defaultPrefixes, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2021", got[0].YearHint)
	assert.Equal(t, filepath.Join(root, "2021", "STKT2QUOTESN(0315).TXT"), got[0].Path)
}

func TestFindQuoteFiles_MissingRoot(t *testing.T) {
	_, err := NewDiscovery(nil).FindQuoteFiles(filepath.Join(t.TempDir(), "nope"), "", defaultPrefixes, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))
}

func TestListYearDirs(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "2022/a", "2018/b", "abcd/c", "123/d")

	years, err := NewDiscovery(nil).ListYearDirs(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"2018", "2022"}, years)
}
