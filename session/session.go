// Package session persists what a performance is made of: the current
// token sequence as a JSON session file, and an append-only SQLite
// journal of every program revision that made it to the speakers.
//
// Sessions keep token identities, so reopening one and editing it
// continues to reuse operator state from the first post-load compile
// onward. Operator state itself (phases, delay lines) is deliberately
// not persisted; a reopened session starts silent until applied.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/codeblessmax/sound-garden-0x2/compiler"
)

// Session is the on-disk form of a program: the token sequence with
// identities.
type Session struct {
	Ops []compiler.TextOp `json:"ops"`
}

// Load reads a session file. A missing file is an empty session, not an
// error, so a fresh project starts without ceremony.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Session{}, nil
		}
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}
	return &s, nil
}

// Save writes the session atomically: a temp file in the same directory
// is renamed over the target, so a crash mid-write cannot truncate a
// good session.
func (s *Session) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode session: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return fmt.Errorf("cannot create temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("cannot write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("cannot close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("cannot replace %s: %w", path, err)
	}
	return nil
}
