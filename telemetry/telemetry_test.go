package telemetry

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestNoopWithoutCollector(t *testing.T) {
	ctx := context.Background()

	timer := StartTimer(ctx, "anything")
	child := timer.Child("nested")
	child.End()
	timer.End()

	var buf bytes.Buffer
	FromContext(ctx).Report(&buf)
	assert.Equal(t, 0, buf.Len())
}

func TestCollectorRoundTrip(t *testing.T) {
	collector := NewTimingCollector()
	ctx := WithCollector(context.Background(), collector)

	assert.True(t, FromContext(ctx) == Collector(collector))

	timer := StartTimer(ctx, "parse")
	child := timer.Child("tokenize")
	child.End()
	timer.End()

	var buf bytes.Buffer
	collector.Report(&buf)
	out := buf.String()

	assert.True(t, strings.Contains(out, "parse"), "report: %s", out)
	assert.True(t, strings.Contains(out, "tokenize"), "report: %s", out)

	// The child line is indented under its parent.
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, 2, len(lines))
	assert.True(t, strings.HasPrefix(lines[1], "  "))
}

func TestCollectorMultipleRoots(t *testing.T) {
	collector := NewTimingCollector()

	collector.Start("first").End()
	collector.Start("second").End()

	var buf bytes.Buffer
	collector.Report(&buf)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Equal(t, 2, len(lines))
}

func TestFormatDuration(t *testing.T) {
	for _, tt := range []struct {
		input string
		want  string
	}{
		{"1500ns", "2µs"},
		{"1.5ms", "1.5ms"},
		{"2.5s", "2.5s"},
	} {
		d, err := time.ParseDuration(tt.input)
		assert.NoError(t, err)
		assert.Equal(t, tt.want, formatDuration(d))
	}
}
