package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codeblessmax/sound-garden-0x2/compiler"
)

func TestLoadMissingFileIsEmptySession(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(s.Ops) != 0 {
		t.Errorf("Expected empty session, got %d ops", len(s.Ops))
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Expected a parse error")
	}
}

func TestRoundTripPreservesIdentities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	orig := &Session{Ops: []compiler.TextOp{
		compiler.NewTextOp("sine:440"),
		compiler.NewTextOp("0.5"),
		compiler.NewTextOp("*"),
	}}
	if err := orig.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Ops) != 3 {
		t.Fatalf("Expected 3 ops, got %d", len(loaded.Ops))
	}
	for i := range orig.Ops {
		if loaded.Ops[i].ID != orig.Ops[i].ID {
			t.Errorf("Op %d: identity changed across round trip", i)
		}
		if loaded.Ops[i].Text != orig.Ops[i].Text {
			t.Errorf("Op %d: expected text %q, got %q", i, orig.Ops[i].Text, loaded.Ops[i].Text)
		}
	}
}

func TestSaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")

	first := &Session{Ops: []compiler.TextOp{compiler.NewTextOp("1.0")}}
	if err := first.Save(path); err != nil {
		t.Fatalf("First Save failed: %v", err)
	}
	second := &Session{Ops: []compiler.TextOp{compiler.NewTextOp("noise")}}
	if err := second.Save(path); err != nil {
		t.Fatalf("Second Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Ops) != 1 || loaded.Ops[0].Text != "noise" {
		t.Errorf("Expected second save's contents, got %v", loaded.Ops)
	}

	// No temp files left behind.
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the session file in %s, found %d entries", dir, len(entries))
	}
}
