package fetch

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/ianaindex"
)

// DecodeText interprets data as text in the named IANA charset. An empty
// charset means UTF-8. Invalid byte sequences surface as a decode error,
// never silently replaced.
func DecodeText(url string, data []byte, charset string) (string, error) {
	name := strings.TrimSpace(strings.ToLower(charset))

	if name == "" || name == "utf-8" || name == "utf8" {
		if !utf8.Valid(data) {
			return "", NewDecodeError(url, fmt.Errorf("body is not valid UTF-8"))
		}

		return string(data), nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return "", NewDecodeError(url, fmt.Errorf("%w: %q", ErrUnknownCharset, charset))
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", NewDecodeError(url, fmt.Errorf("failed to decode %q body: %w", charset, err))
	}

	return string(decoded), nil
}

// DecodeJSON parses data as JSON into v. A malformed body is a decode
// error, distinct from any transfer failure.
func DecodeJSON(url string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return NewDecodeError(url, fmt.Errorf("failed to parse JSON body: %w", err))
	}

	return nil
}
