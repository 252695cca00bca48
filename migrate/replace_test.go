package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const replaceSource = `.header {
  color: red;
}

// Book Card
.book-card {
  @include card;
  .inner {
    content: "}";
  }
}

.card-actions {
  .borrow-button {
    flex: 1;
  }
  .details-button {
    .mat-icon {
      font-size: 1.1rem;
    }
  }
}
`

func TestBlockReplacer_EndsAtRule(t *testing.T) {
	r := &BlockReplacer{Replacements: []Replacement{{
		Name:  "book-card",
		Start: "// Book Card",
		End:   EndOfRule,
		Text:  "// Book Card\n.book-card {\n  color: blue;\n}",
	}}}
	doc := applyPass(t, r, replaceSource)

	want := `.header {
  color: red;
}

// Book Card
.book-card {
  color: blue;
}

.card-actions {`
	assert.Contains(t, string(doc.Src), want)
	assert.Equal(t, 1, doc.Stats.BlocksReplaced)
	assert.Empty(t, doc.Findings)
}

func TestBlockReplacer_EndsAtRegex(t *testing.T) {
	r := &BlockReplacer{Replacements: []Replacement{{
		Name:  "buttons",
		Start: ".borrow-button {",
		End:   `(?s)\.mat-icon \{\s*font-size: 1\.1rem;\s*\}\s*\}`,
		Text:  ".borrow-button {\n    flex: 2;\n  }",
	}}}
	doc := applyPass(t, r, replaceSource)

	assert.Contains(t, string(doc.Src), ".card-actions {\n  .borrow-button {\n    flex: 2;\n  }\n}\n")
	assert.NotContains(t, string(doc.Src), "details-button")
}

func TestBlockReplacer_IdenticalTextIsNoOp(t *testing.T) {
	r := &BlockReplacer{Replacements: []Replacement{{
		Name:  "header",
		Start: ".header",
		Text:  ".header {\n  color: red;\n}",
	}}}
	doc := applyPass(t, r, replaceSource)
	assert.Equal(t, replaceSource, string(doc.Src))
	assert.Zero(t, doc.Stats.BlocksReplaced)
}

func TestBlockReplacer_StartMissing(t *testing.T) {
	r := &BlockReplacer{Replacements: []Replacement{{Name: "gone", Start: "// Nowhere", Text: "x"}}}
	doc := applyPass(t, r, replaceSource)

	assert.Equal(t, replaceSource, string(doc.Src))
	require.Len(t, doc.Findings, 1)
	assert.Equal(t, "pattern_not_found", doc.Findings[0].Rule)
	assert.ErrorIs(t, doc.Findings[0].Err, ErrPatternNotFound)

	var notFound *PatternNotFoundError
	require.ErrorAs(t, doc.Findings[0].Err, &notFound)
	assert.Equal(t, "// Nowhere", notFound.Pattern)
}

func TestBlockReplacer_StartAmbiguous(t *testing.T) {
	r := &BlockReplacer{Replacements: []Replacement{{Name: "buttons", Start: "-button {", Text: "x"}}}
	doc := applyPass(t, r, replaceSource)

	assert.Equal(t, replaceSource, string(doc.Src))
	require.Len(t, doc.Findings, 1)
	assert.Equal(t, "ambiguous_pattern", doc.Findings[0].Rule)

	var ambiguous *AmbiguousPatternError
	require.ErrorAs(t, doc.Findings[0].Err, &ambiguous)
	assert.Equal(t, 2, ambiguous.Count)
}

func TestBlockReplacer_EndMissing(t *testing.T) {
	r := &BlockReplacer{Replacements: []Replacement{{
		Name:  "header",
		Start: ".header",
		End:   `font-size: 9rem;`,
		Text:  "x",
	}}}
	doc := applyPass(t, r, replaceSource)
	require.Len(t, doc.Findings, 1)
	assert.Equal(t, "pattern_not_found", doc.Findings[0].Rule)
}

func TestBlockReplacer_NoRuleAfterStart(t *testing.T) {
	r := &BlockReplacer{Replacements: []Replacement{{Name: "tail", Start: "// end", Text: "x"}}}
	doc := applyPass(t, r, ".a {\n}\n// end\n")
	require.Len(t, doc.Findings, 1)
	assert.Equal(t, "pattern_not_found", doc.Findings[0].Rule)
}

func TestBlockReplacer_InvalidRegexFails(t *testing.T) {
	r := &BlockReplacer{Replacements: []Replacement{{Name: "bad", Start: ".header", End: "(", Text: "x"}}}
	doc := NewDocument("test.scss", []byte(replaceSource), nil)
	err := r.Apply(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid end pattern")
}

func TestBlockReplacer_EmitsEvent(t *testing.T) {
	emitter, events := collectEvents()
	doc := NewDocument("test.scss", []byte(replaceSource), emitter)
	r := &BlockReplacer{Replacements: []Replacement{{Name: "book-card", Start: "// Book Card", Text: "// gone"}}}
	require.NoError(t, r.Apply(doc))

	replaced := events.ofType(EventBlockReplaced)
	require.Len(t, replaced, 1)
	assert.Equal(t, "book-card", replaced[0].Data["name"])
	assert.Equal(t, 5, replaced[0].Data["start_line"])
	assert.Equal(t, 11, replaced[0].Data["end_line"])
}
