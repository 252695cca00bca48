package migrate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifiedDiff(t *testing.T) {
	a := []byte(".a {\n  @include m;\n  color: red;\n}\n")
	b := []byte(".a {\n  color: red;\n  @include m;\n}\n")

	diff, err := UnifiedDiff("styles/a.scss", a, b)
	require.NoError(t, err)
	assert.Contains(t, diff, "--- a/styles/a.scss\n+++ b/styles/a.scss\n@@ -1,")
	assert.Contains(t, diff, " .a {\n+  color: red;\n   @include m;\n-  color: red;\n }\n")
}

func TestUnifiedDiff_Equal(t *testing.T) {
	diff, err := UnifiedDiff("a.scss", []byte("x\n"), []byte("x\n"))
	require.NoError(t, err)
	assert.Empty(t, diff)
}
