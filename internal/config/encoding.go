package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/traditionalchinese"

	apperrors "s38cli/internal/errors"
)

// ResolveEncoding maps an encoding name to a decoder. The cp950 family is
// served by Big5; every other name goes through the WHATWG index.
func ResolveEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "cp950", "ms950", "big5", "big5-hkscs", "windows-950":
		return traditionalchinese.Big5, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, apperrors.NewDecodingError("unknown encoding", err).WithContext("encoding", name)
	}
	return enc, nil
}

// validateCharset backs the charset tag.
func validateCharset(fl validator.FieldLevel) bool {
	_, err := ResolveEncoding(fl.Field().String())
	return err == nil
}
