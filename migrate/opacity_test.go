package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpacityRewriter_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "numeric channels",
			input: "color: rgba(255, 0, 0, 0.5);",
			want:  "color: color-mutate(#ff0000, opacity: 0.5);",
		},
		{
			name:  "zero padded channels",
			input: "color: rgba(1, 2, 3, 0);",
			want:  "color: color-mutate(#010203, opacity: 0);",
		},
		{
			name:  "mixed channels",
			input: "color: rgba(15, 16, 171, .25);",
			want:  "color: color-mutate(#0f10ab, opacity: .25);",
		},
		{
			name:  "namespaced variable",
			input: "border: 1px solid rgba(vars.$library-accent-gold, 0.1);",
			want:  "border: 1px solid color-mutate(vars.$library-accent-gold, opacity: 0.1);",
		},
		{
			name:  "hex literal",
			input: "background: rgba(#FFFFFF, 0.95);",
			want:  "background: color-mutate(#FFFFFF, opacity: 0.95);",
		},
		{
			name:  "short hex literal",
			input: "background: rgba(#fff, 1);",
			want:  "background: color-mutate(#fff, opacity: 1);",
		},
		{
			name:  "no spaces",
			input: "color: rgba(0,0,0,0.3);",
			want:  "color: color-mutate(#000000, opacity: 0.3);",
		},
		{
			name:  "uppercase function",
			input: "color: RGBA(0, 0, 0, 1);",
			want:  "color: color-mutate(#000000, opacity: 1);",
		},
		{
			name:  "several calls on one line",
			input: "box-shadow: 0 1px rgba(0, 0, 0, 0.1), 0 2px rgba(vars.$ink, 0.2);",
			want:  "box-shadow: 0 1px color-mutate(#000000, opacity: 0.1), 0 2px color-mutate(vars.$ink, opacity: 0.2);",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := applyPass(t, defaultRewriter(), tt.input)
			assert.Equal(t, tt.want, string(doc.Src))
			assert.Positive(t, doc.Stats.CallsRewritten)
			assert.Empty(t, doc.Findings)
		})
	}
}

func TestOpacityRewriter_UnrecognizedShapesAreReported(t *testing.T) {
	inputs := []string{
		"color: rgba(300, 0, 0, 0.5);",
		"color: rgba($bare, 0.5);",
		"color: rgba(0, 0, 0, 50%);",
		"color: rgba(0, 0, 0, 1.5);",
		"color: rgba(1, 2, 3);",
		"color: rgba(vars . $spaced, 0.5);",
		"color: rgba(#ffff, 0.5);",
	}
	for _, input := range inputs {
		doc := applyPass(t, defaultRewriter(), input)
		assert.Equal(t, input, string(doc.Src), "input: %s", input)
		require.Len(t, doc.Findings, 1, "input: %s", input)
		f := doc.Findings[0]
		assert.Equal(t, "unrecognized_call", f.Rule)
		assert.Equal(t, "rewrite_opacity", f.Pass)
		assert.Equal(t, 1, f.Pos.Line)
	}
}

func TestOpacityRewriter_NestedCallInsideUnrecognizedCall(t *testing.T) {
	doc := applyPass(t, defaultRewriter(), "color: rgba(vars.$a, rgba(0, 0, 0, 0.5));")
	assert.Equal(t, "color: rgba(vars.$a, color-mutate(#000000, opacity: 0.5));", string(doc.Src))
	assert.Equal(t, 1, doc.Stats.CallsRewritten)
	assert.Len(t, doc.Findings, 1)
}

func TestOpacityRewriter_IgnoresCommentsAndStrings(t *testing.T) {
	src := `// rgba(0, 0, 0, 0.5)
/* rgba(1, 1, 1, 0.5) */
.a { content: "rgba(2, 2, 2, 0.5)"; }`
	doc := applyPass(t, defaultRewriter(), src)
	assert.Equal(t, src, string(doc.Src))
	assert.Zero(t, doc.Stats.CallsRewritten)
	assert.Empty(t, doc.Findings)
}

func TestOpacityRewriter_SecondPassIsNoOp(t *testing.T) {
	src := `.a {
  color: rgba(255, 0, 0, 0.5);
  border-color: rgba(vars.$library-accent-gold, 0.1);
  background: rgba(#ffffff, 0.95);
}`
	first := applyPass(t, defaultRewriter(), src)
	require.Equal(t, 3, first.Stats.CallsRewritten)

	second := applyPass(t, defaultRewriter(), string(first.Src))
	assert.Equal(t, string(first.Src), string(second.Src))
	assert.Zero(t, second.Stats.CallsRewritten)
	assert.Empty(t, second.Findings)
}

func TestOpacityRewriter_EmitsEvents(t *testing.T) {
	emitter, events := collectEvents()
	doc := NewDocument("test.scss", []byte(".a {\n  color: rgba(0, 0, 0, 0.5);\n}"), emitter)
	require.NoError(t, defaultRewriter().Apply(doc))

	rewritten := events.ofType(EventCallRewritten)
	require.Len(t, rewritten, 1)
	assert.Equal(t, 2, rewritten[0].Data["line"])
	assert.Equal(t, "rgba(0, 0, 0, 0.5)", rewritten[0].Data["from"])
	assert.Equal(t, "color-mutate(#000000, opacity: 0.5)", rewritten[0].Data["to"])
}

func TestOpacityRewriter_SassPresetInsertsUse(t *testing.T) {
	var cfg OpacityConfig
	require.NoError(t, cfg.ApplyPreset(PresetSass))
	r := &OpacityRewriter{Source: "rgba", Target: cfg.Target, Param: cfg.Param, EnsureUse: cfg.EnsureUse}

	doc := applyPass(t, r, "@use 'vars';\n.a { color: rgba(0, 0, 0, 0.5); }\n")
	assert.Equal(t, "@use \"sass:color\";\n@use 'vars';\n.a { color: color.change(#000000, $alpha: 0.5); }\n", string(doc.Src))
	assert.Equal(t, 1, doc.Stats.UsesInserted)

	again := applyPass(t, r, "@use 'sass:color';\n.a { color: rgba(0, 0, 0, 0.5); }\n")
	assert.Equal(t, "@use 'sass:color';\n.a { color: color.change(#000000, $alpha: 0.5); }\n", string(again.Src))
	assert.Zero(t, again.Stats.UsesInserted)
}

func TestOpacityRewriter_NoUseWithoutRewrites(t *testing.T) {
	r := &OpacityRewriter{Source: "rgba", Target: "color.change", Param: "$alpha", EnsureUse: "sass:color"}
	doc := applyPass(t, r, ".a { color: red; }")
	assert.Equal(t, ".a { color: red; }", string(doc.Src))
}

func TestOpacityRewriter_LexErrorFails(t *testing.T) {
	doc := NewDocument("test.scss", []byte(`.a { content: "open; }`), nil)
	err := defaultRewriter().Apply(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated string")
}
