package sie

import (
	"errors"
	"strings"
)

var errUnterminatedQuote = errors.New("unterminated quoted field")
var errUnterminatedObjectList = errors.New("unterminated object list")

// tokenize splits the remainder of a record line into positional fields.
//
// Fields are one of:
//   - a double-quoted string, which may contain embedded whitespace and
//     backslash-escaped quotes; the closing quote is required
//   - an inline { ... } object list, captured verbatim as a single field
//     (possibly empty), as used by #TRANS dimension references
//   - a contiguous run of non-whitespace bytes
//
// This is a single-pass byte scanner with no backtracking.
func tokenize(rest string) ([]string, error) {
	var fields []string
	pos := 0

	for pos < len(rest) {
		ch := rest[pos]

		// Skip inter-field whitespace.
		if ch == ' ' || ch == '\t' {
			pos++
			continue
		}

		switch ch {
		case '"':
			field, next, err := scanQuoted(rest, pos+1)
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
			pos = next

		case '{':
			field, next, err := scanObjectList(rest, pos+1)
			if err != nil {
				return nil, err
			}
			fields = append(fields, field)
			pos = next

		default:
			start := pos
			for pos < len(rest) && rest[pos] != ' ' && rest[pos] != '\t' {
				pos++
			}
			fields = append(fields, rest[start:pos])
		}
	}

	return fields, nil
}

// scanQuoted scans from just after an opening quote to the closing quote.
// Backslash escapes the next byte.
func scanQuoted(rest string, pos int) (string, int, error) {
	var b strings.Builder
	for pos < len(rest) {
		ch := rest[pos]
		if ch == '"' {
			return b.String(), pos + 1, nil
		}
		if ch == '\\' && pos+1 < len(rest) {
			pos++
			ch = rest[pos]
		}
		b.WriteByte(ch)
		pos++
	}
	return "", pos, errUnterminatedQuote
}

// scanObjectList scans from just after '{' to the matching '}', returning
// the trimmed contents as one field.
func scanObjectList(rest string, pos int) (string, int, error) {
	start := pos
	for pos < len(rest) {
		if rest[pos] == '}' {
			return strings.TrimSpace(rest[start:pos]), pos + 1, nil
		}
		pos++
	}
	return "", pos, errUnterminatedObjectList
}
