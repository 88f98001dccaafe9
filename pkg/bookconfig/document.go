package bookconfig

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mdbook-wavedrom/pkg/errors"
)

// FileName is the name of mdbook's configuration file.
const FileName = "book.toml"

// Document is a parsed book.toml.
type Document struct {
	src  []byte
	tree map[string]any
}

// Parse decodes src. The returned document keeps a copy of src.
func Parse(src []byte) (*Document, error) {
	tree, err := decode(src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "configuration is not valid TOML")
	}
	return &Document{src: bytes.Clone(src), tree: tree}, nil
}

func decode(src []byte) (map[string]any, error) {
	tree := map[string]any{}
	if _, err := toml.Decode(string(src), &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Document, error) {
	src, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeConfigNotFound, "configuration file '%s' missing", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
	}
	tree, err := decode(src)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s is not valid TOML", path)
	}
	return &Document{src: src, tree: tree}, nil
}

// Bytes returns the document's TOML source.
func (d *Document) Bytes() []byte { return bytes.Clone(d.src) }

// Lookup returns the value at the dotted key path, e.g. Lookup("output", "html").
func (d *Document) Lookup(keys ...string) (any, bool) {
	var cur any = d.tree
	for _, k := range keys {
		table, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = table[k]; !ok {
			return nil, false
		}
	}
	return cur, true
}

// Save writes the document to path atomically: the bytes go to a temporary
// file in the same directory which then replaces path. An existing file's
// permissions are kept.
func (d *Document) Save(path string) (err error) {
	mode := os.FileMode(0o644)
	if fi, statErr := os.Stat(path); statErr == nil {
		mode = fi.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(d.src); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err = tmp.Chmod(mode); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err = tmp.Sync(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write %s", path)
	}
	return nil
}

// encode renders a table tree as TOML. Comments and formatting of the
// original source are lost.
func encode(tree map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(tree); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
