package parse

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// decodeObject parses span as a single JSON object. Numbers are kept as
// json.Number so integers survive untouched until validation.
func decodeObject(span string, repair bool) (map[string]any, error) {
	obj, offset, err := decodeStrict(span)
	if err == nil {
		return obj, nil
	}
	if repair {
		// Models commonly emit single quotes, trailing commas or cut off
		// mid-object; only a failure after repair is reported.
		if repaired, rerr := jsonrepair.JSONRepair(span); rerr == nil {
			if obj, _, err2 := decodeStrict(repaired); err2 == nil {
				return obj, nil
			}
		}
	}
	return nil, newMalformedJSONError(span, offset, err)
}

// decodeStrict returns the decoded object, or the byte offset of the syntax
// error within span and the error.
func decodeStrict(span string) (map[string]any, int, error) {
	dec := json.NewDecoder(strings.NewReader(span))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, errorOffset(span, dec, err), err
	}
	// A well formed object followed by anything but whitespace is not one object.
	if rest := strings.TrimSpace(span[dec.InputOffset():]); rest != "" {
		return nil, int(dec.InputOffset()), fmt.Errorf("unexpected content after JSON object: %q", truncate(rest, 20))
	}
	if obj == nil {
		return nil, 0, errors.New("JSON value is not an object")
	}
	return obj, 0, nil
}

func errorOffset(span string, dec *json.Decoder, err error) int {
	var syntax *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntax):
		if syntax.Offset > 0 {
			return int(syntax.Offset - 1)
		}
		return 0
	case errors.As(err, &typeErr):
		return int(typeErr.Offset)
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return len(span)
	default:
		return int(dec.InputOffset())
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
