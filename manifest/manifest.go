// Package manifest keeps the archive's manifest.json: the list of reports
// written by generate --archive, newest first.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/sonnes/cheftrends/core"
)

// FileName is the manifest's name inside the archive directory.
const FileName = "manifest.json"

// Manifest is the archive index of one directory.
type Manifest struct {
	Entries []core.ManifestEntry `json:"entries"`

	dir string
}

// Load reads dir/manifest.json. A missing file yields an empty Manifest bound
// to dir.
func Load(dir string) (*Manifest, error) {
	m := &Manifest{dir: dir}
	data, err := os.ReadFile(m.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", m.Path(), err)
	}
	m.sort()
	return m, nil
}

// Path returns the manifest file location.
func (m *Manifest) Path() string {
	return filepath.Join(m.dir, FileName)
}

// Add inserts e, replacing any entry with the same ID. Reports share an ID
// when generated on the same day, so a rerun replaces that day's report.
func (m *Manifest) Add(e core.ManifestEntry) {
	i := slices.IndexFunc(m.Entries, func(x core.ManifestEntry) bool { return x.ID == e.ID })
	if i >= 0 {
		m.Entries[i] = e
	} else {
		m.Entries = append(m.Entries, e)
	}
	m.sort()
}

// Prune keeps the newest keep entries and returns the ones it dropped.
// keep <= 0 keeps everything.
func (m *Manifest) Prune(keep int) []core.ManifestEntry {
	if keep <= 0 || len(m.Entries) <= keep {
		return nil
	}
	dropped := slices.Clone(m.Entries[keep:])
	m.Entries = m.Entries[:keep]
	return dropped
}

func (m *Manifest) sort() {
	slices.SortStableFunc(m.Entries, func(a, b core.ManifestEntry) int {
		return b.GeneratedAt.Compare(a.GeneratedAt)
	})
}

// Save writes the manifest through a temporary file and a rename, so readers
// never observe a partial file.
func (m *Manifest) Save() error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(m.dir, ".manifest-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), m.Path())
}
