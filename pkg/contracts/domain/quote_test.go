package domain

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejection_String(t *testing.T) {
	tests := []struct {
		name string
		r    Rejection
		want string
	}{
		{"bare code", Reject(ReasonEmptyStockID), "empty_stock_id"},
		{"with value", RejectWith(ReasonCloseOutOfBounds, "12345.6"), "close_out_of_bounds:12345.6"},
		{"empty value still rendered", RejectWith(ReasonLowVolume, ""), "low_volume:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.String())
		})
	}
}

func TestYearHintFromDir(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{filepath.Join("data", "2020", "STKT2QUOTESN(0102).TXT"), "2020"},
		{filepath.Join("data", "misc", "STKWQUOTES.TXT"), ""},
		{filepath.Join("data", "20201", "x.txt"), ""},
		{"x.txt", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, YearHintFromDir(tt.path))
		})
	}
}

func TestNewFileDescriptor(t *testing.T) {
	in := NewFileInput(filepath.Join("root", "2021", "STKT2QUOTESN(0315).TXT"))
	got := NewFileDescriptor(in)

	want := FileDescriptor{
		Path:     in.Path,
		Name:     "STKT2QUOTESN(0315).TXT",
		YearHint: "2021",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
}

func TestFileResult_Audit(t *testing.T) {
	res := FileResult{
		Descriptor: FileDescriptor{Name: "a.txt"},
		Records:    make([]ParsedQuoteRecord, 3),
		Diagnostics: []DiagnosticRecord{
			{LineNo: 4, Reason: Reject(ReasonLineTooShort)},
		},
		DataLines: 4,
	}
	require.NoError(t, res.Audit())
	assert.False(t, res.Failed())

	res.DataLines = 5
	err := res.Audit()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.txt")

	failed := FileResult{
		Diagnostics: []DiagnosticRecord{{LineNo: 0, Reason: RejectWith(ReasonFileReadError, "boom")}},
	}
	assert.True(t, failed.Failed())
	assert.Equal(t, 0, failed.Rejected())
	assert.NoError(t, failed.Audit())
}

func TestReasonCounts_Top(t *testing.T) {
	counts := ReasonCounts{}
	counts.Add([]DiagnosticRecord{
		{Reason: Reject(ReasonLineTooShort)},
		{Reason: Reject(ReasonCloseUnparseable)},
		{Reason: Reject(ReasonCloseUnparseable)},
		{Reason: Reject(ReasonEmptyStockID)},
	})

	top := counts.Top(2)
	require.Len(t, top, 2)
	assert.Equal(t, ReasonCount{Code: ReasonCloseUnparseable, Count: 2}, top[0])
	assert.Equal(t, ReasonCount{Code: ReasonEmptyStockID, Count: 1}, top[1])
	assert.Len(t, counts.Top(0), 3)
}

func TestVariant_Valid(t *testing.T) {
	assert.True(t, VariantBasic.Valid())
	assert.True(t, VariantFiltering.Valid())
	assert.False(t, Variant("ml").Valid())
}
