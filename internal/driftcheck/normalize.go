package driftcheck

import (
	"regexp"
	"strings"
)

var (
	// CSI colour (m) and erase-line (K) sequences.
	ansiSequence = regexp.MustCompile(`\x1b\[[0-9;]*[mK]`)
	// Remnants left behind when something upstream already dropped the ESC byte.
	bareColorCode = regexp.MustCompile(`\[[0-9]+(?:;[0-9]+)*m`)
)

// StripANSI removes terminal colour and erase-line sequences from text.
func StripANSI(text string) string {
	if !strings.Contains(text, "[") {
		return text
	}
	text = ansiSequence.ReplaceAllString(text, "")
	return bareColorCode.ReplaceAllString(text, "")
}

// Normalize strips ANSI sequences and splits the text into lines.
// Line order and in-line whitespace are preserved; a trailing carriage
// return is dropped so CRLF captures behave like LF captures.
func Normalize(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(StripANSI(text), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
