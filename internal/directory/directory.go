// Package directory holds the read-only stop name to stop id lookup table.
package directory

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed stops.yaml
var defaultStops []byte

// Entry is a single stop in the directory.
type Entry struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Directory is an immutable, ordered stop lookup table.
// Matching is case-insensitive but names are kept as written.
type Directory struct {
	entries []Entry
	byName  map[string]string
	lower   []string // lower-cased names, same order as entries
}

// New builds a directory. Names must be unique and non-empty.
func New(entries []Entry) (*Directory, error) {
	d := &Directory{
		entries: make([]Entry, 0, len(entries)),
		byName:  make(map[string]string, len(entries)),
		lower:   make([]string, 0, len(entries)),
	}
	for i, e := range entries {
		if e.Name == "" || e.ID == "" {
			return nil, fmt.Errorf("entry %d: name and id are required", i)
		}
		if _, dup := d.byName[e.Name]; dup {
			return nil, fmt.Errorf("entry %d: duplicate stop name %q", i, e.Name)
		}
		d.byName[e.Name] = e.ID
		d.entries = append(d.entries, e)
		d.lower = append(d.lower, strings.ToLower(e.Name))
	}
	return d, nil
}

// Default returns the directory embedded in the binary.
func Default() *Directory {
	d, err := ParseYAML(bytes.NewReader(defaultStops))
	if err != nil {
		panic(fmt.Sprintf("embedded stop directory: %v", err))
	}
	return d
}

// Load reads a directory file. Files ending in .txt or .csv are read as GTFS
// stops.txt, anything else as a YAML (or JSON) mapping of name to id.
func Load(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open directory: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".csv":
		return ParseGTFSStops(f)
	default:
		return ParseYAML(f)
	}
}

// ParseYAML decodes a name: id mapping, keeping document order.
func ParseYAML(r io.Reader) (*Directory, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return New(nil)
		}
		return nil, fmt.Errorf("decode directory: %w", err)
	}
	if len(doc.Content) == 0 {
		return New(nil)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("decode directory: line %d: expected a mapping of stop name to id", root.Line)
	}

	entries := make([]Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("decode directory: line %d: id for %q must be a string", v.Line, k.Value)
		}
		entries = append(entries, Entry{Name: k.Value, ID: v.Value})
	}
	return New(entries)
}

// Len returns the number of stops.
func (d *Directory) Len() int { return len(d.entries) }

// Entries returns a copy of all entries in directory order.
func (d *Directory) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}

// Names returns all stop names in directory order.
func (d *Directory) Names() []string {
	out := make([]string, len(d.entries))
	for i, e := range d.entries {
		out[i] = e.Name
	}
	return out
}

// Lookup returns the id for an exact (case-sensitive) stop name.
func (d *Directory) Lookup(name string) (string, bool) {
	id, ok := d.byName[name]
	return id, ok
}

// Match returns the names containing term, ignoring case, in directory order.
// The term is used as given; callers trim it.
func (d *Directory) Match(term string) []string {
	needle := strings.ToLower(term)
	var out []string
	for i, name := range d.lower {
		if strings.Contains(name, needle) {
			out = append(out, d.entries[i].Name)
		}
	}
	return out
}
