package session

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	_ "modernc.org/sqlite"

	"github.com/codeblessmax/sound-garden-0x2/compiler"
)

// ErrNoRevision indicates the requested revision doesn't exist.
var ErrNoRevision = errors.New("revision not found")

// cborEncMode uses canonical encoding so identical token sequences
// always produce identical snapshot bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("session: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Journal is an append-only history of applied programs, one row per
// successful apply, backed by SQLite. The token snapshot is stored as
// CBOR with identities intact, so reverting to a revision restores
// continuity keys, not just text.
type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

// Revision summarizes one journal row.
type Revision struct {
	ID        int64
	CreatedAt time.Time
	Source    string // the program text as entered
}

// OpenJournal opens (creating if needed) a journal database.
func OpenJournal(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS revisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at TEXT NOT NULL,
		source TEXT NOT NULL,
		snapshot BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating revisions table: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// Append records a successfully applied token sequence and returns the
// new revision id. source is the program text as the performer entered
// it, kept alongside the snapshot for human-readable listings.
func (j *Journal) Append(ops []compiler.TextOp, source string) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	snapshot, err := cborEncMode.Marshal(ops)
	if err != nil {
		return 0, fmt.Errorf("encoding snapshot: %w", err)
	}
	res, err := j.db.Exec(
		"INSERT INTO revisions (created_at, source, snapshot) VALUES (?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339Nano), source, snapshot,
	)
	if err != nil {
		return 0, fmt.Errorf("appending revision: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading revision id: %w", err)
	}
	return id, nil
}

// List returns the newest revisions first, at most limit of them
// (limit <= 0 means all).
func (j *Journal) List(limit int) ([]Revision, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	q := "SELECT id, created_at, source FROM revisions ORDER BY id DESC"
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = j.db.Query(q+" LIMIT ?", limit)
	} else {
		rows, err = j.db.Query(q)
	}
	if err != nil {
		return nil, fmt.Errorf("listing revisions: %w", err)
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var r Revision
		var created string
		if err := rows.Scan(&r.ID, &created, &r.Source); err != nil {
			return nil, fmt.Errorf("scanning revision: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
			r.CreatedAt = t
		}
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

// Ops decodes the token snapshot of one revision, identities included.
func (j *Journal) Ops(id int64) ([]compiler.TextOp, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	var snapshot []byte
	err := j.db.QueryRow("SELECT snapshot FROM revisions WHERE id = ?", id).Scan(&snapshot)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRevision
		}
		return nil, fmt.Errorf("querying revision %d: %w", id, err)
	}
	var ops []compiler.TextOp
	if err := cbor.Unmarshal(snapshot, &ops); err != nil {
		return nil, fmt.Errorf("decoding revision %d: %w", id, err)
	}
	return ops, nil
}
