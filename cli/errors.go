package cli

import (
	"fmt"
	"strings"

	"github.com/sieflow/sieflow/document"
	"github.com/sieflow/sieflow/sie"
)

// ErrorRenderer renders parse and validation errors with source-line
// context when the error carries a line number.
type ErrorRenderer struct {
	lines []string
}

// NewErrorRenderer creates a renderer over the raw file content. Content
// that cannot be decoded yields a renderer without source context.
func NewErrorRenderer(raw []byte) *ErrorRenderer {
	text, err := sie.DecodeText(raw)
	if err != nil {
		return &ErrorRenderer{}
	}
	return &ErrorRenderer{lines: strings.Split(text, "\n")}
}

// Render formats one error, attaching the offending source line when the
// error identifies one.
func (r *ErrorRenderer) Render(err error) string {
	line := errorLine(err)
	if line <= 0 || line > len(r.lines) {
		return errorStyle.Render(err.Error())
	}

	var b strings.Builder
	b.WriteString(errorStyle.Render(err.Error()))
	b.WriteString("\n")

	// One line of context on each side.
	for n := line - 1; n <= line+1; n++ {
		if n < 1 || n > len(r.lines) {
			continue
		}
		prefix := "  "
		style := dimStyle
		if n == line {
			prefix = "> "
			style = labelStyle
		}
		b.WriteString(fmt.Sprintf("%s%4d | %s\n", prefix, n, style.Render(strings.TrimRight(r.lines[n-1], "\r"))))
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderAll formats several warnings or errors, one per line block.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	parts := make([]string, 0, len(errs))
	for _, err := range errs {
		parts = append(parts, r.Render(err))
	}
	return strings.Join(parts, "\n")
}

// errorLine extracts a source line number from the known error types.
func errorLine(err error) int {
	switch e := err.(type) {
	case *sie.LineError:
		return e.Line
	case *document.UnknownAccountError:
		return e.Line
	case *document.UnknownRecordWarning:
		return e.Line
	default:
		return 0
	}
}
