package migrate

import (
	"fmt"

	"github.com/martinemde/scssmigrate/scssparser"
)

// Finding is a diagnostic raised while applying a pass: an input the pass
// could not handle, or a pattern it could not find.
type Finding struct {
	scssparser.Diagnostic
	Pass string
	Err  error // typed cause, when there is one
}

func (f Finding) String() string {
	return fmt.Sprintf("%s: %s", f.Pass, f.Diagnostic.String())
}

// Stats counts the edits made by a run.
type Stats struct {
	CallsRewritten  int `json:"calls_rewritten"`
	BlocksReordered int `json:"blocks_reordered"`
	BlocksReplaced  int `json:"blocks_replaced"`
	UsesInserted    int `json:"uses_inserted"`
}

// Edits returns the total number of edits.
func (s Stats) Edits() int {
	return s.CallsRewritten + s.BlocksReordered + s.BlocksReplaced + s.UsesInserted
}

// Document is the in-memory stylesheet a run mutates. Passes replace Src
// wholesale and record what they did.
type Document struct {
	Path     string
	Src      []byte
	Stats    Stats
	Findings []Finding

	emitter *EventEmitter
}

// NewDocument creates a Document for src. emitter may be nil.
func NewDocument(path string, src []byte, emitter *EventEmitter) *Document {
	return &Document{Path: path, Src: src, emitter: emitter}
}

// Parse parses the current source.
func (d *Document) Parse() (*scssparser.Stylesheet, error) {
	sheet, err := scssparser.Parse(d.Src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", d.Path, err)
	}
	return sheet, nil
}

// Report records a finding and emits it.
func (d *Document) Report(f Finding) {
	d.Findings = append(d.Findings, f)
	d.emitter.Emit(FindingEvent(f))
}

func (d *Document) emit(e Event) {
	d.emitter.Emit(e)
}

// Pass is one transformation step of a migration. Passes run in order and
// each one sees the text produced by the previous one.
type Pass interface {
	Name() string
	Apply(doc *Document) error
}

// PassFunc is an adapter to use a function as a Pass.
type PassFunc struct {
	PassName string
	Fn       func(doc *Document) error
}

// Name implements Pass.
func (f PassFunc) Name() string { return f.PassName }

// Apply implements Pass.
func (f PassFunc) Apply(doc *Document) error { return f.Fn(doc) }

// edit replaces src[start:end] with text.
type edit struct {
	start, end int
	text       string
}

// applyEdits splices non-overlapping edits, sorted by start, into src.
func applyEdits(src []byte, edits []edit) []byte {
	if len(edits) == 0 {
		return src
	}
	out := make([]byte, 0, len(src))
	last := 0
	for _, e := range edits {
		out = append(out, src[last:e.start]...)
		out = append(out, e.text...)
		last = e.end
	}
	return append(out, src[last:]...)
}
