// Package diff renders line-oriented unified diffs, used to preview what
// an upgrade does to a menu file before it is written.
package diff

import (
	"fmt"
	"strings"
)

// Op is the kind of a line in an edit script.
type Op int

const (
	// Equal lines appear in both inputs.
	Equal Op = iota
	// Insert lines appear only in the new input.
	Insert
	// Delete lines appear only in the old input.
	Delete
)

// Line is one entry of an edit script.
type Line struct {
	Op   Op
	Text string
	// Old and New are 0-based line numbers, -1 when the line is absent
	// from that side.
	Old, New int
}

// Lines returns the edit script turning a into b, computed from the
// longest common subsequence. Deletions precede insertions within a
// changed run.
func Lines(a, b []string) []Line {
	n, m := len(a), len(b)

	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int, n+1)
	for i := range lcs {
		lcs[i] = make([]int, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	script := make([]Line, 0, max(n, m))
	i, j := 0, 0
	for i < n || j < m {
		switch {
		case i < n && j < m && a[i] == b[j]:
			script = append(script, Line{Op: Equal, Text: a[i], Old: i, New: j})
			i++
			j++
		case i < n && (j == m || lcs[i+1][j] >= lcs[i][j+1]):
			script = append(script, Line{Op: Delete, Text: a[i], Old: i, New: -1})
			i++
		default:
			script = append(script, Line{Op: Insert, Text: b[j], Old: -1, New: j})
			j++
		}
	}
	return script
}

// ContextLines is the number of unchanged lines shown around a change.
const ContextLines = 3

// Unified renders a unified diff of old and current labelled with name.
// It returns "" when the inputs are identical.
func Unified(name string, old, current []byte) string {
	script := Lines(split(string(old)), split(string(current)))

	var hunks [][2]int // [start, end) into script
	for i := 0; i < len(script); i++ {
		if script[i].Op == Equal {
			continue
		}
		start := max(i-ContextLines, 0)
		end := i
		// Extend over changes separated by at most 2*ContextLines equal lines.
		for k := i; k < len(script) && k <= end+2*ContextLines; k++ {
			if script[k].Op != Equal {
				end = k
			}
		}
		stop := min(end+1+ContextLines, len(script))
		if len(hunks) > 0 && start <= hunks[len(hunks)-1][1] {
			hunks[len(hunks)-1][1] = stop
		} else {
			hunks = append(hunks, [2]int{start, stop})
		}
		i = end
	}
	if len(hunks) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", name, name)
	for _, h := range hunks {
		writeHunk(&sb, script[h[0]:h[1]])
	}
	return sb.String()
}

func writeHunk(sb *strings.Builder, lines []Line) {
	oldStart, newStart := -1, -1
	oldCount, newCount := 0, 0
	lastOld, lastNew := -1, -1
	for _, l := range lines {
		if l.Old >= 0 {
			if oldStart < 0 {
				oldStart = l.Old
			}
			oldCount++
			lastOld = l.Old
		}
		if l.New >= 0 {
			if newStart < 0 {
				newStart = l.New
			}
			newCount++
			lastNew = l.New
		}
	}
	// An empty side is reported at the line before the change.
	if oldStart < 0 {
		oldStart = lastOld
	}
	if newStart < 0 {
		newStart = lastNew
	}
	fmt.Fprintf(sb, "@@ -%s +%s @@\n", hunkRange(oldStart, oldCount), hunkRange(newStart, newCount))

	for _, l := range lines {
		switch l.Op {
		case Equal:
			sb.WriteString(" ")
		case Insert:
			sb.WriteString("+")
		case Delete:
			sb.WriteString("-")
		}
		sb.WriteString(l.Text)
		sb.WriteString("\n")
	}
}

func hunkRange(start, count int) string {
	if count == 0 {
		return fmt.Sprintf("%d,0", start+1)
	}
	return fmt.Sprintf("%d,%d", start+1, count)
}

// split breaks s into lines, ignoring one trailing newline.
func split(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
