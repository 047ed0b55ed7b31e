package server

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

// token is one whitespace-delimited word of a document, with the
// position the diagnostics map back to.
type token struct {
	text  string
	line  int // zero-based
	start int // column of the first character
	end   int // column one past the last character
}

// tokenize splits a document into tokens, left to right then top to
// bottom, the same order the compiler walks them in. Columns count
// bytes; garden programs are ASCII operators and numbers, so that
// matches what editors expect.
func tokenize(text string) []token {
	var tokens []token
	for lineNo, line := range strings.Split(text, "\n") {
		col := 0
		for col < len(line) {
			if line[col] == ' ' || line[col] == '\t' || line[col] == '\r' {
				col++
				continue
			}
			start := col
			for col < len(line) && line[col] != ' ' && line[col] != '\t' && line[col] != '\r' {
				col++
			}
			tokens = append(tokens, token{
				text:  line[start:col],
				line:  lineNo,
				start: start,
				end:   col,
			})
		}
	}
	return tokens
}

// tokenAt returns the token covering the cursor, or "" on whitespace.
func tokenAt(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	isSpace := func(c byte) bool { return c == ' ' || c == '\t' || c == '\r' }

	start := col
	for start > 0 && !isSpace(line[start-1]) {
		start--
	}
	end := col
	for end < len(line) && !isSpace(line[end]) {
		end++
	}
	return line[start:end]
}

// tokenPrefixAt returns the part of the token before the cursor, the
// fragment a completion should match against.
func tokenPrefixAt(text string, pos protocol.Position) string {
	lines := strings.Split(text, "\n")
	if int(pos.Line) >= len(lines) {
		return ""
	}
	line := lines[pos.Line]
	col := int(pos.Character)
	if col > len(line) {
		col = len(line)
	}

	start := col
	for start > 0 && line[start-1] != ' ' && line[start-1] != '\t' {
		start--
	}
	return line[start:col]
}
