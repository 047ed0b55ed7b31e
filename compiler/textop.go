package compiler

import (
	"strings"

	"github.com/google/uuid"
)

// TextOp is one textual operator token as an editor produced it.
//
// ID is the token's identity: assigned once when the token is created,
// stable while the user edits the text, never reused for a different
// token while this one exists. The engine compares identities and
// nothing else — their bytes carry no meaning.
type TextOp struct {
	ID   uuid.UUID `json:"id"`
	Text string    `json:"op"`
}

// NewTextOp returns a token with a fresh random identity. Front ends
// that track tokens across edits assign identities themselves and keep
// them; this is for one-shot compilations and tests.
func NewTextOp(text string) TextOp {
	return TextOp{ID: uuid.New(), Text: text}
}

// ParseOps tokenizes a whole program text on whitespace, assigning a
// fresh identity to every token. Each call yields all-new identities,
// so two programs parsed from identical text share no state.
func ParseOps(text string) []TextOp {
	fields := strings.Fields(text)
	ops := make([]TextOp, len(fields))
	for i, f := range fields {
		ops[i] = NewTextOp(f)
	}
	return ops
}

// splitToken divides a token text into an operator name and its raw
// :param suffix. The split is at the last colon so a future name could
// itself contain one. hasParam distinguishes "sine" from "sine:".
func splitToken(text string) (name, rawParam string, hasParam bool) {
	i := strings.LastIndexByte(text, ':')
	if i < 0 {
		return text, "", false
	}
	return text[:i], text[i+1:], true
}
