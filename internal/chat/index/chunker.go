package index

import (
	"strings"
	"unicode/utf8"
)

// splitWindows slices text into windows of roughly size bytes with the tail
// of each window repeated at the head of the next, so retrieval does not lose
// context that straddles a boundary. Cut points land on rune boundaries so a
// multibyte rune is never split across windows.
func splitWindows(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if len(text) <= size {
		return []string{text}
	}
	var windows []string
	for start := 0; start < len(text); {
		end := start + size
		if end > len(text) {
			end = len(text)
		} else {
			for end > start && !utf8.RuneStart(text[end]) {
				end--
			}
			if end == start {
				// rune wider than the window, take it whole
				_, n := utf8.DecodeRuneInString(text[start:])
				end = start + n
			}
		}
		windows = append(windows, text[start:end])
		if end == len(text) {
			break
		}
		next := end - overlap
		if next < 0 {
			next = 0
		}
		for next > 0 && !utf8.RuneStart(text[next]) {
			next--
		}
		if next <= start {
			// overlap plus boundary back-off swallowed the whole step
			next = end
		}
		start = next
	}
	return windows
}
