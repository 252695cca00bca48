package migrate

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// eventCollector records every emitted event.
type eventCollector struct {
	mu     sync.Mutex
	events []Event
}

func collectEvents() (*EventEmitter, *eventCollector) {
	c := &eventCollector{}
	emitter := NewEventEmitter()
	emitter.On(func(e Event) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.events = append(c.events, e)
	})
	return emitter, c
}

func (c *eventCollector) ofType(t EventType) []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Event
	for _, e := range c.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (c *eventCollector) types() []EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]EventType, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

// applyPass runs a single pass over src and returns the document.
func applyPass(t *testing.T, p Pass, src string) *Document {
	t.Helper()
	doc := NewDocument("test.scss", []byte(src), nil)
	require.NoError(t, p.Apply(doc))
	return doc
}

func findingsByRule(findings []Finding, rule string) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Rule == rule {
			out = append(out, f)
		}
	}
	return out
}

func defaultRewriter() *OpacityRewriter {
	return &OpacityRewriter{Source: "rgba", Target: "color-mutate", Param: "opacity"}
}

// copyFixture copies testdata/<name> into a temp dir and returns its path.
func copyFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
