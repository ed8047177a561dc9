// Package sie reads Swedish SIE accounting export files.
//
// SIE is a line-oriented, tag-based text format: every logical record is one
// line starting with a #TAG, followed by positional fields that are either
// double-quoted strings or whitespace-separated tokens. Files are encoded in
// IBM code page 437 ("PC8" in the SIE specification).
//
// The reader decodes the raw bytes, skips blank and non-record lines, and
// produces a lazy sequence of tokenized Records in file order:
//
//	r, err := sie.NewReader(raw)
//	for {
//	    rec, err := r.Next()
//	    if err == io.EOF {
//	        break
//	    }
//	    ...
//	}
package sie

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Reader produces Records from a decoded SIE file. The sequence is lazy
// (lines are tokenized on demand) and restartable via Reset.
type Reader struct {
	lines []string
	idx   int
}

// NewReader decodes raw SIE file content and returns a reader over its
// records. It returns a *DecodeError when the content is not text at all;
// individual undecodable bytes never fail the whole file, since every byte
// value maps to some code page 437 character.
func NewReader(raw []byte) (*Reader, error) {
	text, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return &Reader{lines: splitLines(text)}, nil
}

// DecodeText decodes raw SIE content to UTF-8 without tokenizing it.
// Useful for showing file previews and error context.
func DecodeText(raw []byte) (string, error) {
	return decode(raw)
}

// decode converts code page 437 bytes to UTF-8. NUL bytes mark binary
// content (a zip or PDF uploaded by mistake) and are rejected outright.
func decode(raw []byte) (string, error) {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		return "", &DecodeError{Offset: i, Reason: "NUL byte; content is not SIE text"}
	}
	text, err := charmap.CodePage437.NewDecoder().String(string(raw))
	if err != nil {
		return "", &DecodeError{Reason: err.Error()}
	}
	return text, nil
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, "\r")
	}
	return lines
}

// Reset rewinds the reader to the first record.
func (r *Reader) Reset() {
	r.idx = 0
}

// Next returns the next record in file order, or io.EOF when the input is
// exhausted. A *LineError reports a malformed line (unterminated quoted
// field); the reader skips that line and remains usable, so callers can
// record the error and keep going.
func (r *Reader) Next() (*Record, error) {
	for r.idx < len(r.lines) {
		line := strings.TrimSpace(r.lines[r.idx])
		lineNo := r.idx + 1
		r.idx++

		if line == "" {
			continue
		}

		// Verification blocks wrap transaction lines in { ... } markers.
		if line == "{" {
			return &Record{Kind: BlockStart, Tag: "{", Line: lineNo}, nil
		}
		if line == "}" {
			return &Record{Kind: BlockEnd, Tag: "}", Line: lineNo}, nil
		}

		// Anything not starting with the tag marker is skipped.
		if line[0] != '#' {
			continue
		}

		tag, rest := splitTag(line)
		fields, err := tokenize(rest)
		if err != nil {
			return nil, &LineError{Line: lineNo, Tag: tag, Reason: err.Error()}
		}

		spec, known := tagTable[strings.ToUpper(tag)]
		if !known || len(fields) < spec.minFields {
			return &Record{Kind: Unknown, Tag: tag, Fields: fields, Line: lineNo}, nil
		}
		return &Record{Kind: spec.kind, Tag: tag, Fields: fields, Line: lineNo}, nil
	}
	return nil, io.EOF
}

// ReadAll consumes the reader and returns all remaining records plus any
// per-line errors encountered along the way. Line errors do not stop the
// scan.
func (r *Reader) ReadAll() ([]*Record, []error) {
	var records []*Record
	var errs []error
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, errs
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		records = append(records, rec)
	}
}

func splitTag(line string) (tag, rest string) {
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' || line[i] == '\t' {
			return line[:i], line[i+1:]
		}
	}
	return line, ""
}
