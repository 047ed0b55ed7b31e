// Package manifest handles garden.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest represents a garden.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Audio   Audio   `toml:"audio"`
	Session Session `toml:"session"`

	// Dir is the directory containing the garden.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name string `toml:"name"`
}

// Audio configures the output stream.
type Audio struct {
	SampleRate int `toml:"sample-rate"`
	BufferSize int `toml:"buffer-size"`
}

// Session configures where performance state lives, relative to Dir.
type Session struct {
	File       string `toml:"file"`
	Journal    string `toml:"journal"`
	Recordings string `toml:"recordings"`
}

// Default returns a manifest with every field at its default, rooted
// at dir.
func Default(dir string) *Manifest {
	m := &Manifest{Dir: dir}
	m.applyDefaults()
	return m
}

func (m *Manifest) applyDefaults() {
	if m.Audio.SampleRate == 0 {
		m.Audio.SampleRate = 48000
	}
	if m.Audio.BufferSize == 0 {
		m.Audio.BufferSize = 256
	}
	if m.Session.File == "" {
		m.Session.File = "session.json"
	}
	if m.Session.Journal == "" {
		m.Session.Journal = "garden.db"
	}
	if m.Session.Recordings == "" {
		m.Session.Recordings = "recordings"
	}
}

func (m *Manifest) validate() error {
	sr := m.Audio.SampleRate
	if sr < 8000 || sr > 192000 {
		return fmt.Errorf("sample-rate %d out of range [8000, 192000]", sr)
	}
	bs := m.Audio.BufferSize
	if bs < 32 || bs > 8192 || bs&(bs-1) != 0 {
		return fmt.Errorf("buffer-size %d must be a power of two in [32, 8192]", bs)
	}
	return nil
}

// Load parses a garden.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, "garden.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	m.applyDefaults()
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &m, nil
}

// FindAndLoad walks up from startDir to find a garden.toml file, then
// loads and returns the manifest. With none found anywhere up the tree
// it returns the defaults rooted at startDir, so a performance can
// begin in any scratch directory.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}
	start := dir

	for {
		path := filepath.Join(dir, "garden.toml")
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return Default(start), nil
		}
		dir = parent
	}
}

// SessionPath returns the absolute path of the session file.
func (m *Manifest) SessionPath() string {
	return filepath.Join(m.Dir, m.Session.File)
}

// JournalPath returns the absolute path of the journal database.
func (m *Manifest) JournalPath() string {
	return filepath.Join(m.Dir, m.Session.Journal)
}

// RecordingsDir returns the absolute path of the recordings directory.
func (m *Manifest) RecordingsDir() string {
	return filepath.Join(m.Dir, m.Session.Recordings)
}
