package session

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/codeblessmax/sound-garden-0x2/compiler"
)

// openTestJournal opens a journal in a per-test temp directory.
func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "garden.db"))
	if err != nil {
		t.Fatalf("OpenJournal failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalAppendAndList(t *testing.T) {
	j := openTestJournal(t)

	ops1 := []compiler.TextOp{compiler.NewTextOp("sine:440")}
	ops2 := []compiler.TextOp{compiler.NewTextOp("sine:880"), compiler.NewTextOp("clip")}

	id1, err := j.Append(ops1, "sine:440")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	id2, err := j.Append(ops2, "sine:880 clip")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if id2 <= id1 {
		t.Errorf("Expected increasing ids, got %d then %d", id1, id2)
	}

	revs, err := j.List(0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("Expected 2 revisions, got %d", len(revs))
	}
	// Newest first.
	if revs[0].ID != id2 || revs[0].Source != "sine:880 clip" {
		t.Errorf("Expected newest revision first, got %+v", revs[0])
	}
	if revs[0].CreatedAt.IsZero() {
		t.Error("Expected a parsed timestamp")
	}
}

func TestJournalListLimit(t *testing.T) {
	j := openTestJournal(t)
	for i := 0; i < 5; i++ {
		if _, err := j.Append([]compiler.TextOp{compiler.NewTextOp("noise")}, "noise"); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}
	revs, err := j.List(2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(revs) != 2 {
		t.Errorf("Expected 2 revisions with limit 2, got %d", len(revs))
	}
}

func TestJournalOpsRestoresIdentities(t *testing.T) {
	j := openTestJournal(t)

	ops := []compiler.TextOp{
		compiler.NewTextOp("sine:440"),
		compiler.NewTextOp("0.5"),
		compiler.NewTextOp("*"),
	}
	id, err := j.Append(ops, "sine:440 0.5 *")
	if err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	got, err := j.Ops(id)
	if err != nil {
		t.Fatalf("Ops failed: %v", err)
	}
	if len(got) != len(ops) {
		t.Fatalf("Expected %d ops, got %d", len(ops), len(got))
	}
	for i := range ops {
		if got[i].ID != ops[i].ID {
			t.Errorf("Op %d: identity lost through the journal", i)
		}
		if got[i].Text != ops[i].Text {
			t.Errorf("Op %d: expected %q, got %q", i, ops[i].Text, got[i].Text)
		}
	}
}

func TestJournalMissingRevision(t *testing.T) {
	j := openTestJournal(t)
	if _, err := j.Ops(42); !errors.Is(err, ErrNoRevision) {
		t.Errorf("Expected ErrNoRevision, got %v", err)
	}
}

func TestSnapshotEncodingIsDeterministic(t *testing.T) {
	ops := []compiler.TextOp{compiler.NewTextOp("tri:220"), compiler.NewTextOp("tanh")}
	a, err := cborEncMode.Marshal(ops)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	b, err := cborEncMode.Marshal(ops)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(a) != string(b) {
		t.Error("Canonical encoding produced differing bytes for identical ops")
	}
}
