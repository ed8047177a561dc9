package sie

import "fmt"

// DecodeError is returned when file content cannot be treated as SIE text
// at all. It is fatal: no records can be produced from the input.
type DecodeError struct {
	Offset int // Byte offset of the offending content, when known
	Reason string
}

func (e *DecodeError) Error() string {
	if e.Offset > 0 {
		return fmt.Sprintf("cannot decode file at byte %d: %s", e.Offset, e.Reason)
	}
	return fmt.Sprintf("cannot decode file: %s", e.Reason)
}

// LineError reports a malformed record line. It is scoped to that line
// only; the reader continues with the next line.
type LineError struct {
	Line   int
	Tag    string
	Reason string
}

func (e *LineError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("line %d: %s record: %s", e.Line, e.Tag, e.Reason)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}
