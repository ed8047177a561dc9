package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/alecthomas/kong"

	"github.com/sieflow/sieflow/document"
	"github.com/sieflow/sieflow/sie"
)

const sampleFile = `#FNAMN "Testbolaget AB"
#RAR 0 20230101 20231231
#KONTO 1930 "Foretagskonto"
#KONTO 3010 "Forsaljning"
#VER A 1 20230315 "Kundbetalning"
{
#TRANS 1930 {} 1000.00
#TRANS 3010 {} -1000.00
}
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "company.se")
	assert.NoError(t, os.WriteFile(path, []byte(sampleFile), 0o644))
	return path
}

func newParser(t *testing.T) (*kong.Kong, *Commands) {
	t.Helper()
	commands := &Commands{}
	parser, err := kong.New(commands, kong.Name("sieflow"))
	assert.NoError(t, err)
	return parser, commands
}

func TestCommandSelection(t *testing.T) {
	path := writeSample(t)

	for _, tt := range []struct {
		args []string
		want string
	}{
		{[]string{"check", path}, "check <file>"},
		{[]string{"report", path}, "report <file>"},
		{[]string{"flow", path}, "flow <file>"},
		{[]string{"doctor", "records", path}, "doctor records <file>"},
		{[]string{"web"}, "web"},
	} {
		parser, _ := newParser(t)
		ctx, err := parser.Parse(tt.args)
		assert.NoError(t, err, "args %v", tt.args)
		assert.Equal(t, tt.want, ctx.Command())
	}
}

func TestFileOrStdinDecode(t *testing.T) {
	path := writeSample(t)

	parser, commands := newParser(t)
	_, err := parser.Parse([]string{"check", path})
	assert.NoError(t, err)

	assert.Equal(t, path, commands.Check.File.Filename)
	assert.Equal(t, sampleFile, string(commands.Check.File.Contents))
}

func TestFileOrStdinDecode_MissingFile(t *testing.T) {
	parser, _ := newParser(t)
	_, err := parser.Parse([]string{"check", filepath.Join(t.TempDir(), "missing.se")})
	assert.Error(t, err)
}

func TestFlowDefaults(t *testing.T) {
	path := writeSample(t)

	parser, commands := newParser(t)
	_, err := parser.Parse([]string{"flow", path})
	assert.NoError(t, err)

	assert.Equal(t, "0.01", commands.Flow.Threshold)
	assert.True(t, commands.Flow.Year != nil)
	assert.Equal(t, 0, *commands.Flow.Year)
}

func TestWebDefaults(t *testing.T) {
	parser, commands := newParser(t)
	_, err := parser.Parse([]string{"web"})
	assert.NoError(t, err)

	assert.Equal(t, 8080, commands.Web.Port)
	assert.False(t, commands.Web.Watch)
	assert.Equal(t, "", commands.Web.File)
}

func TestErrorRenderer_WithLineContext(t *testing.T) {
	raw := []byte("#FNAMN \"Acme AB\"\n#KONTO 1930 \"broken\n#RAR 0 20230101 20231231\n")
	renderer := NewErrorRenderer(raw)

	out := renderer.Render(&sie.LineError{Line: 2, Tag: "#KONTO", Reason: "unterminated quoted field"})

	assert.True(t, strings.Contains(out, "unterminated quoted field"), "output: %s", out)
	assert.True(t, strings.Contains(out, ">    2 |"), "output: %s", out)
	// Context lines on both sides.
	assert.True(t, strings.Contains(out, "   1 |"), "output: %s", out)
	assert.True(t, strings.Contains(out, "   3 |"), "output: %s", out)
}

func TestErrorRenderer_WithoutLine(t *testing.T) {
	renderer := NewErrorRenderer([]byte("#FNAMN \"Acme AB\"\n"))

	out := renderer.Render(&document.MalformedDocumentError{Missing: "#RAR"})
	assert.True(t, strings.Contains(out, "#RAR"), "output: %s", out)
	assert.False(t, strings.Contains(out, "|"), "output: %s", out)
}

func TestErrorRenderer_RenderAll(t *testing.T) {
	renderer := NewErrorRenderer([]byte("#FNAMN \"Acme AB\"\n"))

	out := renderer.RenderAll([]error{
		&document.UnknownRecordWarning{Line: 1, Tag: "#FRAMTIDA"},
		&document.MalformedDocumentError{Missing: "#RAR"},
	})
	assert.True(t, strings.Contains(out, "#FRAMTIDA"))
	assert.True(t, strings.Contains(out, "#RAR"))
}

func TestFormatRatio(t *testing.T) {
	assert.True(t, strings.Contains(formatRatio(nil), "undefined"))
}
