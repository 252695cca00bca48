package migrate

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/martinemde/scssmigrate/scssparser"
)

// EndOfRule is the Replacement.End value that ends a region at the balanced
// closing brace of the first rule starting at or after the start marker.
const EndOfRule = "rule"

// Replacement swaps a hand-authored text in for a region of the stylesheet.
// The region begins at Start, which must occur exactly once, and ends either
// at the end of the following rule (End == EndOfRule or empty) or after the
// first match of the End regular expression.
type Replacement struct {
	Name     string `mapstructure:"name" yaml:"name"`
	Start    string `mapstructure:"start" yaml:"start"`
	End      string `mapstructure:"end" yaml:"end,omitempty"`
	Text     string `mapstructure:"text" yaml:"text,omitempty"`
	TextFile string `mapstructure:"text_file" yaml:"text_file,omitempty"`
}

func (r Replacement) endsAtRule() bool {
	return r.End == "" || r.End == EndOfRule
}

// BlockReplacer applies whole-region replacements in order.
type BlockReplacer struct {
	Replacements []Replacement
}

// Name implements Pass.
func (r *BlockReplacer) Name() string { return "replace_blocks" }

// Apply implements Pass.
func (r *BlockReplacer) Apply(doc *Document) error {
	for _, rep := range r.Replacements {
		start, end, err := r.locate(doc, rep)
		if err != nil {
			if f, ok := r.finding(rep, err); ok {
				doc.Report(f)
				continue
			}
			return err
		}

		if string(doc.Src[start:end]) == rep.Text {
			continue
		}
		startLine := lineOf(doc.Src, start)
		endLine := lineOf(doc.Src, end)
		doc.Src = applyEdits(doc.Src, []edit{{start: start, end: end, text: rep.Text}})
		doc.Stats.BlocksReplaced++
		doc.emit(BlockReplacedEvent(rep.Name, startLine, endLine))
	}
	return nil
}

// locate returns the byte range of the region rep replaces.
func (r *BlockReplacer) locate(doc *Document, rep Replacement) (int, int, error) {
	src := string(doc.Src)
	switch count := strings.Count(src, rep.Start); {
	case count == 0:
		return 0, 0, &PatternNotFoundError{Pass: r.Name(), Pattern: rep.Start}
	case count > 1:
		return 0, 0, &AmbiguousPatternError{Pass: r.Name(), Pattern: rep.Start, Count: count}
	}
	start := strings.Index(src, rep.Start)

	if rep.endsAtRule() {
		sheet, err := doc.Parse()
		if err != nil {
			return 0, 0, err
		}
		var found *scssparser.Node
		sheet.Walk(func(n *scssparser.Node) bool {
			if found != nil {
				return false
			}
			if n.Block && n.Span.Start.Offset >= start {
				found = n
				return false
			}
			return true
		})
		if found == nil {
			return 0, 0, &PatternNotFoundError{Pass: r.Name(), Pattern: "rule after " + rep.Start}
		}
		return start, found.Span.End.Offset, nil
	}

	re, err := regexp.Compile(rep.End)
	if err != nil {
		return 0, 0, fmt.Errorf("replacement %q: invalid end pattern: %w", rep.Name, err)
	}
	from := start + len(rep.Start)
	loc := re.FindStringIndex(src[from:])
	if loc == nil {
		return 0, 0, &PatternNotFoundError{Pass: r.Name(), Pattern: rep.End}
	}
	return start, from + loc[1], nil
}

// finding converts a locate failure into a finding. Errors that are not about
// the region being absent or ambiguous are returned as is.
func (r *BlockReplacer) finding(rep Replacement, err error) (Finding, bool) {
	f := Finding{
		Pass: r.Name(),
		Err:  err,
		Diagnostic: scssparser.Diagnostic{
			Severity: scssparser.Warning,
			Message:  fmt.Sprintf("replacement %q skipped: %v", rep.Name, err),
		},
	}
	switch err.(type) {
	case *PatternNotFoundError:
		f.Rule = "pattern_not_found"
	case *AmbiguousPatternError:
		f.Rule = "ambiguous_pattern"
	default:
		return Finding{}, false
	}
	return f, true
}

// lineOf returns the 1-based line containing byte offset off.
func lineOf(src []byte, off int) int {
	return strings.Count(string(src[:off]), "\n") + 1
}
