package migrate

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff renders the change from a to b as a unified diff with three
// lines of context. It returns "" when the inputs are equal.
func UnifiedDiff(path string, a, b []byte) (string, error) {
	if string(a) == string(b) {
		return "", nil
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("diffing %s: %w", path, err)
	}
	return diff, nil
}
