package routemap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileStore keeps the route list in a JSON or YAML file chosen by extension.
type FileStore struct {
	Path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the file. A missing file yields an empty list.
func (s *FileStore) Load(ctx context.Context) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	payload, err := os.ReadFile(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("routemap: read %s: %w", s.Path, err)
	}

	var entries []Entry
	switch s.format() {
	case formatJSON:
		err = json.Unmarshal(payload, &entries)
	case formatYAML:
		err = yaml.Unmarshal(payload, &entries)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, s.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("routemap: decode %s: %w", s.Path, err)
	}
	return entries, nil
}

// Save writes entries atomically through a temporary file in the same directory.
func (s *FileStore) Save(ctx context.Context, entries []Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entries == nil {
		entries = []Entry{}
	}

	var (
		payload []byte
		err     error
	)
	switch s.format() {
	case formatJSON:
		payload, err = json.MarshalIndent(entries, "", "  ")
		payload = append(payload, '\n')
	case formatYAML:
		payload, err = yaml.Marshal(entries)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, s.Path)
	}
	if err != nil {
		return fmt.Errorf("routemap: encode %s: %w", s.Path, err)
	}

	directory := filepath.Dir(s.Path)
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return fmt.Errorf("routemap: create %s: %w", directory, err)
	}
	temp, err := os.CreateTemp(directory, ".route-map-*")
	if err != nil {
		return fmt.Errorf("routemap: create temp file: %w", err)
	}
	tempName := temp.Name()
	if _, err := temp.Write(payload); err != nil {
		temp.Close()
		os.Remove(tempName)
		return fmt.Errorf("routemap: write %s: %w", tempName, err)
	}
	if err := temp.Close(); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("routemap: close %s: %w", tempName, err)
	}
	if err := os.Rename(tempName, s.Path); err != nil {
		os.Remove(tempName)
		return fmt.Errorf("routemap: replace %s: %w", s.Path, err)
	}
	return nil
}

type fileFormat int

const (
	formatUnknown fileFormat = iota
	formatJSON
	formatYAML
)

func (s *FileStore) format() fileFormat {
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".json":
		return formatJSON
	case ".yaml", ".yml":
		return formatYAML
	}
	return formatUnknown
}
