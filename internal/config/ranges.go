package config

import (
	"fmt"
	"strconv"
	"strings"
)

// IDRange is an inclusive range of numeric instrument identifiers.
type IDRange struct {
	Min int64 `yaml:"min" validate:"gte=0"`
	Max int64 `yaml:"max" validate:"gtefield=Min"`
}

// Contains reports whether id lies in [Min, Max].
func (r IDRange) Contains(id int64) bool {
	return id >= r.Min && id <= r.Max
}

func (r IDRange) String() string {
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// IDRanges is a set of accepted identifier ranges. It decodes from an
// environment value such as "1000-9999,20000-29999".
type IDRanges []IDRange

// Contains reports whether any range contains id.
func (rs IDRanges) Contains(id int64) bool {
	for _, r := range rs {
		if r.Contains(id) {
			return true
		}
	}
	return false
}

func (rs IDRanges) String() string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}

// Decode implements envconfig.Decoder.
func (rs *IDRanges) Decode(value string) error {
	var out IDRanges
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lo, hi, ok := strings.Cut(part, "-")
		if !ok {
			hi = lo
		}
		from, err := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id range %q: %w", part, err)
		}
		to, err := strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id range %q: %w", part, err)
		}
		if to < from {
			return fmt.Errorf("invalid id range %q: max below min", part)
		}
		out = append(out, IDRange{Min: from, Max: to})
	}
	*rs = out
	return nil
}
