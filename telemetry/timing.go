package telemetry

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// TimingCollector records a tree of timed operations.
type TimingCollector struct {
	mu    sync.Mutex
	roots []*span
}

type span struct {
	name     string
	start    time.Time
	end      time.Time
	children []*span
}

func (s *span) duration() time.Duration {
	if s.end.IsZero() {
		return time.Since(s.start)
	}
	return s.end.Sub(s.start)
}

// NewTimingCollector creates an empty collector.
func NewTimingCollector() *TimingCollector {
	return &TimingCollector{}
}

// Start begins a top-level span.
func (c *TimingCollector) Start(name string) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &span{name: name, start: time.Now()}
	c.roots = append(c.roots, s)
	return &timingTimer{collector: c, span: s}
}

var (
	nameStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	durationStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#767676", Dark: "#8A8A8A"})
)

// Report writes the span tree, one line per span, indented by depth.
func (c *TimingCollector) Report(w io.Writer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, root := range c.roots {
		writeSpan(w, root, 0)
	}
}

func writeSpan(w io.Writer, s *span, depth int) {
	indent := strings.Repeat("  ", depth)
	_, _ = fmt.Fprintf(w, "%s%s %s\n",
		indent,
		nameStyle.Render(s.name),
		durationStyle.Render(formatDuration(s.duration())),
	)
	for _, child := range s.children {
		writeSpan(w, child, depth+1)
	}
}

// formatDuration rounds to a readable precision for report output.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(10 * time.Microsecond).String()
	default:
		return d.Round(time.Millisecond).String()
	}
}

type timingTimer struct {
	collector *TimingCollector
	span      *span
}

func (t *timingTimer) End() {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	if t.span.end.IsZero() {
		t.span.end = time.Now()
	}
}

func (t *timingTimer) Child(name string) Timer {
	t.collector.mu.Lock()
	defer t.collector.mu.Unlock()

	s := &span{name: name, start: time.Now()}
	t.span.children = append(t.span.children, s)
	return &timingTimer{collector: t.collector, span: s}
}
