package parsers

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Diff generates a unified-style diff between two versions of a file,
// attached as detail to formatting diagnostics. The diff runs at line
// granularity and collapses unchanged regions to three lines of context.
func Diff(before, after string) string {
	dmp := diffmatchpatch.New()
	c1, c2, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(c1, c2, false), lineArray)

	var result []string
	for _, diff := range diffs {
		lines := strings.Split(diff.Text, "\n")
		switch diff.Type {
		case diffmatchpatch.DiffDelete:
			for _, line := range lines {
				if line != "" || diff.Text == "\n" {
					result = append(result, "-"+line)
				}
			}
		case diffmatchpatch.DiffInsert:
			for _, line := range lines {
				if line != "" || diff.Text == "\n" {
					result = append(result, "+"+line)
				}
			}
		case diffmatchpatch.DiffEqual:
			contextLines := 3
			startIdx := len(lines) - contextLines
			if startIdx < 0 {
				startIdx = 0
			}
			for i := startIdx; i < len(lines); i++ {
				if lines[i] != "" || i < len(lines)-1 {
					result = append(result, " "+lines[i])
				}
			}
		}
	}

	return strings.Join(result, "\n")
}
