package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// place composites box over base with its top-left corner at cell (x, y).
// Styled text on either side of the box is preserved; anything falling off
// base is clipped.
func place(base []string, box string, x, y int) []string {
	for i, ln := range strings.Split(box, "\n") {
		row := y + i
		if row < 0 || row >= len(base) {
			continue
		}
		bx := x
		if bx < 0 {
			ln = ansi.TruncateLeft(ln, -bx, "")
			bx = 0
		}
		bw := ansi.StringWidth(ln)
		if bw == 0 {
			continue
		}
		left := ansi.Truncate(base[row], bx, "")
		if lw := ansi.StringWidth(left); lw < bx {
			left += strings.Repeat(" ", bx-lw)
		}
		right := ansi.TruncateLeft(base[row], bx+bw, "")
		base[row] = left + ansi.ResetStyle + ln + ansi.ResetStyle + right
	}
	return base
}

func padRight(s string, n int) string {
	if w := ansi.StringWidth(s); w < n {
		return s + strings.Repeat(" ", n-w)
	}
	return s
}

// fit truncates s to n cells and pads it to exactly n.
func fit(s string, n int) string {
	if n <= 0 {
		return ""
	}
	return padRight(ansi.Truncate(s, n, "…"), n)
}
