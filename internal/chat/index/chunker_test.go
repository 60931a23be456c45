package index

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSplitWindowsOverlap(t *testing.T) {
	text := "abcdefghij"
	windows := splitWindows(text, 4, 2)

	if len(windows) < 2 {
		t.Fatalf("expected multiple windows, got %v", windows)
	}
	for i, w := range windows[:len(windows)-1] {
		if len(w) != 4 {
			t.Fatalf("window %d: expected length 4, got %q", i, w)
		}
	}
	// consecutive windows share the overlap region
	for i := 1; i < len(windows); i++ {
		prev := windows[i-1]
		if !strings.HasPrefix(windows[i], prev[len(prev)-2:]) {
			t.Fatalf("window %d does not overlap previous: %q -> %q", i, prev, windows[i])
		}
	}
	// reassembling without the overlaps yields the original text
	joined := windows[0]
	for i := 1; i < len(windows); i++ {
		joined += windows[i][2:]
	}
	if joined != text {
		t.Fatalf("windows lose content: %q != %q", joined, text)
	}
}

func TestSplitWindowsMultibyteBoundaries(t *testing.T) {
	// 2- and 3-byte runes placed so naive byte cuts would land mid-rune
	text := strings.Repeat("vacunación antirrábica, próxima dosis en佩特 ", 20)
	windows := splitWindows(text, 50, 10)

	if len(windows) < 2 {
		t.Fatalf("expected multiple windows, got %d", len(windows))
	}
	for i, w := range windows {
		if !utf8.ValidString(w) {
			t.Fatalf("window %d is not valid UTF-8: %q", i, w)
		}
	}
	// every rune of the input survives in some window
	joined := strings.Join(windows, "")
	for _, r := range "ñóé佩特" {
		if !strings.ContainsRune(joined, r) {
			t.Fatalf("rune %q lost during splitting", r)
		}
	}
	last := windows[len(windows)-1]
	if !strings.HasSuffix(strings.TrimSpace(text), strings.TrimSpace(last)) {
		t.Fatalf("last window does not end the text: %q", last)
	}
}

func TestSplitWindowsShortInput(t *testing.T) {
	windows := splitWindows("  short  ", 100, 20)
	if len(windows) != 1 || windows[0] != "short" {
		t.Fatalf("expected single trimmed window, got %v", windows)
	}
	if got := splitWindows("   ", 100, 20); got != nil {
		t.Fatalf("expected nil for blank input, got %v", got)
	}
}
