package dataprocessing

import (
	"fmt"
	"sort"

	"s38cli/pkg/contracts/domain"
)

// S38 field names.
const (
	FieldStockID      = "stock_id"
	FieldStockName    = "stock_name"
	FieldOpen         = "open_price"
	FieldHigh         = "high_price"
	FieldLow          = "low_price"
	FieldClose        = "close_price"
	FieldChangeFlag   = "change_flag"
	FieldChangeAmount = "change_amount"
	FieldVolume       = "volume"
	FieldAmount       = "amount"
)

// FieldRange is a named, end-exclusive byte range within a record line.
type FieldRange struct {
	Name  string
	Start int
	End   int
}

// Width returns the number of bytes covered by the range.
func (f FieldRange) Width() int { return f.End - f.Start }

// Layout is an immutable set of field ranges. Ranges may overlap; the largest
// end offset is the minimum length of a valid record line.
type Layout struct {
	fields    map[string]FieldRange
	order     []FieldRange
	minLength int
}

// NewLayout validates fields and builds a Layout from them.
func NewLayout(fields ...FieldRange) (*Layout, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("layout needs at least one field")
	}

	l := &Layout{fields: make(map[string]FieldRange, len(fields))}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field at offset %d has no name", f.Start)
		}
		if f.Start < 0 || f.End <= f.Start {
			return nil, fmt.Errorf("field %s: invalid range [%d, %d)", f.Name, f.Start, f.End)
		}
		if _, dup := l.fields[f.Name]; dup {
			return nil, fmt.Errorf("field %s defined twice", f.Name)
		}
		l.fields[f.Name] = f
		l.order = append(l.order, f)
		if f.End > l.minLength {
			l.minLength = f.End
		}
	}
	sort.SliceStable(l.order, func(i, j int) bool { return l.order[i].Start < l.order[j].Start })
	return l, nil
}

func mustLayout(fields ...FieldRange) *Layout {
	l, err := NewLayout(fields...)
	if err != nil {
		panic(err)
	}
	return l
}

// MinLength returns the largest end offset of the layout.
func (l *Layout) MinLength() int { return l.minLength }

// Range looks up a field by name.
func (l *Layout) Range(name string) (FieldRange, bool) {
	f, ok := l.fields[name]
	return f, ok
}

// Has reports whether the layout defines name.
func (l *Layout) Has(name string) bool {
	_, ok := l.fields[name]
	return ok
}

// Fields returns the ranges ordered by start offset.
func (l *Layout) Fields() []FieldRange {
	out := make([]FieldRange, len(l.order))
	copy(out, l.order)
	return out
}

var (
	quoteFields = []FieldRange{
		{Name: FieldStockID, Start: 0, End: 6},
		{Name: FieldStockName, Start: 6, End: 22},
		{Name: FieldOpen, Start: 22, End: 31},
		{Name: FieldHigh, Start: 31, End: 40},
		{Name: FieldLow, Start: 40, End: 49},
		{Name: FieldClose, Start: 49, End: 58},
		{Name: FieldChangeFlag, Start: 58, End: 59},
	}
	filteringFields = []FieldRange{
		{Name: FieldChangeAmount, Start: 59, End: 68},
		{Name: FieldVolume, Start: 77, End: 86},
		{Name: FieldAmount, Start: 95, End: 107},
	}

	quoteLayout     = mustLayout(quoteFields...)
	filteringLayout = mustLayout(append(append([]FieldRange{}, quoteFields...), filteringFields...)...)
)

// QuoteLayout is the basic S38 layout; records are at least 59 bytes long.
func QuoteLayout() *Layout { return quoteLayout }

// FilteringLayout adds change amount, volume and amount; records are at least
// 107 bytes long.
func FilteringLayout() *Layout { return filteringLayout }

// LayoutFor returns the built-in layout for variant.
func LayoutFor(variant domain.Variant) *Layout {
	if variant == domain.VariantFiltering {
		return filteringLayout
	}
	return quoteLayout
}
