package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Manifest records which chapters are already on disk and how many rows
// the two tables have received so far.
type Manifest struct {
	fetched  map[int]struct{}
	ParaRows int
	SentRows int
}

type manifestFile struct {
	Fetched  []int `json:"fetched"`
	ParaRows int   `json:"para_rows"`
	SentRows int   `json:"sent_rows"`
}

func NewManifest() *Manifest {
	return &Manifest{fetched: make(map[int]struct{})}
}

// Has reports whether chapter n was completed.
func (m *Manifest) Has(n int) bool {
	_, ok := m.fetched[n]
	return ok
}

// MarkFetched records a completed chapter together with the rows it produced.
func (m *Manifest) MarkFetched(n, paraRows, sentRows int) {
	m.fetched[n] = struct{}{}
	m.ParaRows += paraRows
	m.SentRows += sentRows
}

// Fetched returns the completed chapters in ascending order.
func (m *Manifest) Fetched() []int {
	out := make([]int, 0, len(m.fetched))
	for n := range m.fetched {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Pending returns the requested chapters that are not completed yet,
// keeping the order of requested.
func (m *Manifest) Pending(requested []int) []int {
	var out []int
	for _, n := range requested {
		if !m.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

func (m *Manifest) MarshalJSON() ([]byte, error) {
	return json.Marshal(manifestFile{
		Fetched:  m.Fetched(),
		ParaRows: m.ParaRows,
		SentRows: m.SentRows,
	})
}

func (m *Manifest) UnmarshalJSON(b []byte) error {
	var f manifestFile
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	m.fetched = make(map[int]struct{}, len(f.Fetched))
	for _, n := range f.Fetched {
		m.fetched[n] = struct{}{}
	}
	m.ParaRows = f.ParaRows
	m.SentRows = f.SentRows
	return nil
}

// ManifestStore keeps the manifest in a small JSON file.
type ManifestStore struct {
	path string
}

func NewManifestStore(path string) *ManifestStore {
	return &ManifestStore{path: path}
}

func (s *ManifestStore) Path() string {
	return s.path
}

// Load reads the manifest. A missing or unreadable file yields an empty one.
func (s *ManifestStore) Load() (*Manifest, error) {
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return NewManifest(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	m := NewManifest()
	if err := json.Unmarshal(b, m); err != nil {
		return NewManifest(), nil
	}
	return m, nil
}

// Save replaces the manifest file with the current state.
func (s *ManifestStore) Save(m *Manifest) error {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace manifest: %w", err)
	}
	return nil
}
