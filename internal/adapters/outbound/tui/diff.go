package tui

import "github.com/pmezard/go-difflib/difflib"

// RenderDiff returns a unified diff of one file, with git-style a/ and b/
// prefixes on the path.
func RenderDiff(path, before, after string) (string, error) {
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
}
