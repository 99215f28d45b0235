package cli

import (
	"os"
	"strconv"
	"strings"
	"unicode"
)

const (
	boxTopLeft     = "╒"
	boxBottomLeft  = "└"
	boxTopRight    = "╕"
	boxBottomRight = "┘"
	boxSide        = "│"
	boxTop         = "═"
	boxBottom      = "─"
	dividerLeft    = "┠"
	dividerMiddle  = "─"
	dividerRight   = "┨"
	ellipsis       = "…"
)

// Alignment of banner text inside the box.
const (
	AlignLeft = iota
	AlignCenter
	AlignRight
)

// borderWidth is the room taken by the two box sides.
const borderWidth = 2

// NoBannerEnv disables box drawing when set to a true value.
const NoBannerEnv = "FSM_NO_BANNER"

func suppressBanner() bool {
	suppress, err := strconv.ParseBool(os.Getenv(NoBannerEnv))

	return err == nil && suppress
}

// Divider draws a horizontal rule width cells wide, ending in a newline.
func Divider(width int) string {
	return dividerLeft + strings.Repeat(dividerMiddle, max(width-borderWidth, 0)) + dividerRight + "\n"
}

// Banner draws s inside a box width cells wide. Lines that don't fit are cut
// with an ellipsis. An unknown alignment or a non-positive width yields "".
// With NoBannerEnv set, s is returned as a plain line.
func Banner(s string, width int, alignment int) string {
	if suppressBanner() {
		return s + "\n"
	}

	if width <= borderWidth || alignment < AlignLeft || alignment > AlignRight {
		return ""
	}

	inner := width - borderWidth
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")

	parts := make([]string, 0, len(lines)+2)
	parts = append(parts, boxTopLeft+strings.Repeat(boxTop, inner)+boxTopRight)

	for _, line := range lines {
		parts = append(parts, boxSide+pad(line, inner, alignment)+boxSide)
	}

	parts = append(parts, boxBottomLeft+strings.Repeat(boxBottom, inner)+boxBottomRight)

	return strings.Join(parts, "\n")
}

// pad fits text into width visible cells.
func pad(text string, width int, alignment int) string {
	text, length := fit(text, width)
	gap := width - length

	switch alignment {
	case AlignLeft:
		return text + strings.Repeat(" ", gap)
	case AlignRight:
		return strings.Repeat(" ", gap) + text
	default:
		left := gap / 2 //nolint:mnd // halves

		return strings.Repeat(" ", left) + text + strings.Repeat(" ", gap-left)
	}
}

// fit truncates text to width graphic runes, marking the cut with an ellipsis.
// It returns the result and its visible length.
func fit(text string, width int) (string, int) {
	length := 0

	for _, r := range text {
		if unicode.IsGraphic(r) {
			length++
		}
	}

	if length <= width {
		return text, length
	}

	var sb strings.Builder

	kept := 0

	for _, r := range text {
		if unicode.IsGraphic(r) {
			if kept == width-1 {
				break
			}

			kept++
		}

		sb.WriteRune(r)
	}

	sb.WriteString(ellipsis)

	return sb.String(), kept + 1
}
