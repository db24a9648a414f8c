package bridge

import (
	"fmt"
	"strings"
)

// ShouldSend reports whether value differs enough from the last delivered
// value. A nil last always sends.
func ShouldSend(last *int, value, minDelta int) bool {
	if last == nil {
		return true
	}
	d := value - *last
	if d < 0 {
		d = -d
	}
	return d >= minDelta
}

// FormatMessage renders the chatbox text.
func FormatMessage(value int, glyph string) string {
	return strings.TrimSpace(fmt.Sprintf("BG %d %s", value, glyph))
}
