// Package codec converts note text to and from the base64 transport form
// used by the contents API.
package codec

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/starford/raido/internal/apperr"
)

// Encode returns the base64 transport form of text.
func Encode(text string) string {
	return base64.StdEncoding.EncodeToString([]byte(text))
}

// Decode reverses Encode. The contents API wraps encoded payloads across
// lines, so ASCII whitespace is stripped before decoding. Input that is not
// valid base64, or that decodes to invalid UTF-8, yields ErrDecode.
func Decode(data string) (string, error) {
	cleaned := strings.Map(dropSpace, data)
	raw, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return "", fmt.Errorf("codec: %w: %v", apperr.ErrDecode, err)
	}
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("codec: %w: content is not valid UTF-8", apperr.ErrDecode)
	}
	return string(raw), nil
}

func dropSpace(r rune) rune {
	switch r {
	case ' ', '\t', '\n', '\r':
		return -1
	}
	return r
}
