package dataset

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
)

// File is the TOML layout of a dataset file.
type File struct {
	Name     string       `toml:"name"`
	Labels   []string     `toml:"labels"`
	Entities []FileEntity `toml:"entity"`
}

// FileEntity is one [[entity]] table of a dataset file.
type FileEntity struct {
	Key    string    `toml:"key"`
	Color  string    `toml:"color"`
	Image  string    `toml:"image"`
	Values []float64 `toml:"values"`
}

// LoadFile reads and validates a TOML dataset file.
func LoadFile(path string) (*Dataset, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("dataset file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return f.Dataset()
}

// Decode reads a TOML dataset from r.
func Decode(r io.Reader) (*Dataset, error) {
	var f File
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode dataset: %w", err)
	}
	return f.Dataset()
}

// Dataset converts the decoded file into a validated Dataset.
func (f File) Dataset() (*Dataset, error) {
	entities := make([]Entity, len(f.Entities))
	for i, e := range f.Entities {
		entities[i] = Entity(e)
	}
	return New(f.Name, f.Labels, entities)
}

// Encode writes d as a TOML dataset file.
func Encode(w io.Writer, d *Dataset) error {
	f := File{Name: d.Name(), Labels: d.Labels()}
	for _, e := range d.Entities() {
		f.Entities = append(f.Entities, FileEntity(e))
	}
	if err := toml.NewEncoder(w).Encode(f); err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	return nil
}
