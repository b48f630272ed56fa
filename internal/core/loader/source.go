package loader

import (
	"context"
	"io/fs"
	"os"
	"sort"

	"github.com/zeusync/posekit/internal/core/resource"
)

// DefaultPrefix is the directory under each namespace that holds clips.
const DefaultPrefix = "animations"

// DefaultExtensions are the clip file suffixes picked up by discovery.
var DefaultExtensions = []string{".json", ".yaml", ".yml"}

// Candidate is a discovered clip file.
type Candidate struct {
	ID   resource.Identifier
	Path string
}

// Source discovers and reads clip files.
type Source interface {
	Discover(ctx context.Context) ([]Candidate, error)
	ReadFile(path string) ([]byte, error)
}

// FSSource discovers clips in an fs.FS laid out as
// <namespace>/<prefix>/<path><ext>.
type FSSource struct {
	FS         fs.FS
	Prefix     string
	Extensions []string
}

// NewDirSource serves clips from a directory on disk.
func NewDirSource(root, prefix string, exts ...string) *FSSource {
	return &FSSource{FS: os.DirFS(root), Prefix: prefix, Extensions: exts}
}

// Discover returns candidates sorted by path.
func (s *FSSource) Discover(ctx context.Context) ([]Candidate, error) {
	prefix := s.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	exts := s.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	var out []Candidate
	err := fs.WalkDir(s.FS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if id, ok := resource.FromFile(p, prefix, exts...); ok {
			out = append(out, Candidate{ID: id, Path: p})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

func (s *FSSource) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(s.FS, path)
}
