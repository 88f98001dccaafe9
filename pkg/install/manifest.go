package install

import (
	"io/fs"
	"slices"
)

// Entry is one asset of a manifest.
type Entry struct {
	Source string // path inside the manifest's file system
	Dest   string // slash-separated path relative to the book directory
}

// Manifest is an immutable list of assets backed by a file system.
type Manifest struct {
	fsys    fs.FS
	entries []Entry
}

// NewManifest returns a manifest reading entry sources from fsys.
func NewManifest(fsys fs.FS, entries ...Entry) Manifest {
	return Manifest{fsys: fsys, entries: slices.Clone(entries)}
}

// Entries returns the manifest entries in order.
func (m Manifest) Entries() []Entry { return slices.Clone(m.entries) }

// Destinations returns the destination of every entry in manifest order.
func (m Manifest) Destinations() []string {
	dests := make([]string, len(m.entries))
	for i, e := range m.entries {
		dests[i] = e.Dest
	}
	return dests
}

// ReadFile returns the bytes of e's source.
func (m Manifest) ReadFile(e Entry) ([]byte, error) {
	if m.fsys == nil {
		return nil, fs.ErrNotExist
	}
	return fs.ReadFile(m.fsys, e.Source)
}
