package bookconfig

import (
	"reflect"
	"slices"
	"strings"

	"github.com/matzehuels/mdbook-wavedrom/pkg/errors"
)

// Requirements are the configuration entries a preprocessor needs.
type Requirements struct {
	// Preprocessor is the table name under [preprocessor].
	Preprocessor string

	// Command is written as the preprocessor's command when the table is created.
	Command string

	// AdditionalJS lists files that must appear in output.html.additional-js.
	AdditionalJS []string
}

// Report describes what Merge changed.
type Report struct {
	AddedPreprocessor bool
	AddedFiles        []string

	// Reformatted is set when the document had to be re-encoded as a whole,
	// dropping comments and the original key order.
	Reformatted bool
}

// Changed reports whether Merge modified the document.
func (r Report) Changed() bool {
	return r.AddedPreprocessor || len(r.AddedFiles) > 0
}

// HasPreprocessor reports whether [preprocessor.<name>] is defined.
func (d *Document) HasPreprocessor(name string) (bool, error) {
	v, ok := d.Lookup("preprocessor")
	if !ok {
		return false, nil
	}
	table, ok := v.(map[string]any)
	if !ok {
		return false, errors.New(errors.ErrCodeInvalidConfig, "'preprocessor' is not a table")
	}
	entry, ok := table[name]
	if !ok {
		return false, nil
	}
	if _, ok := entry.(map[string]any); !ok {
		return false, errors.New(errors.ErrCodeInvalidConfig, "'preprocessor.%s' is not a table", name)
	}
	return true, nil
}

// AdditionalJS returns output.html.additional-js and whether the key exists.
func (d *Document) AdditionalJS() ([]string, bool, error) {
	for _, path := range [][]string{{"output"}, {"output", "html"}} {
		if v, ok := d.Lookup(path...); ok {
			if _, isTable := v.(map[string]any); !isTable {
				return nil, false, errors.New(errors.ErrCodeInvalidConfig, "'%s' is not a table", strings.Join(path, "."))
			}
		}
	}

	v, ok := d.Lookup("output", "html", "additional-js")
	if !ok {
		return nil, false, nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil, true, errors.New(errors.ErrCodeInvalidConfig, "'output.html.additional-js' must be an array of strings")
	}
	files := make([]string, 0, len(arr))
	for _, e := range arr {
		s, ok := e.(string)
		if !ok {
			return nil, true, errors.New(errors.ErrCodeInvalidConfig, "'output.html.additional-js' must be an array of strings")
		}
		files = append(files, s)
	}
	return files, true, nil
}

// Merge returns doc with the required entries added. Entries already present
// are left alone; doc itself is not modified.
func Merge(doc *Document, req Requirements) (*Document, Report, error) {
	var rep Report
	if err := errors.ValidateKey(req.Preprocessor); err != nil {
		return nil, rep, err
	}

	cur := doc
	present, err := cur.HasPreprocessor(req.Preprocessor)
	if err != nil {
		return nil, rep, err
	}
	if !present {
		next, reformatted, err := cur.addPreprocessor(req)
		if err != nil {
			return nil, rep, err
		}
		cur = next
		rep.AddedPreprocessor = true
		rep.Reformatted = rep.Reformatted || reformatted
	}

	existing, _, err := cur.AdditionalJS()
	if err != nil {
		return nil, rep, err
	}
	var missing []string
	for _, f := range req.AdditionalJS {
		if !slices.Contains(existing, f) && !slices.Contains(missing, f) {
			missing = append(missing, f)
		}
	}
	if len(missing) > 0 {
		next, reformatted, err := cur.addAdditionalJS(existing, missing)
		if err != nil {
			return nil, rep, err
		}
		cur = next
		rep.AddedFiles = missing
		rep.Reformatted = rep.Reformatted || reformatted
	}

	return cur, rep, nil
}

func (d *Document) addPreprocessor(req Requirements) (*Document, bool, error) {
	want := cloneTree(d.tree)
	setPath(want, []string{"preprocessor", req.Preprocessor}, map[string]any{"command": req.Command})

	line, err := keyValue("command", req.Command)
	if err != nil {
		return nil, false, err
	}
	return d.splice(want, appendSection(string(d.src), "[preprocessor."+req.Preprocessor+"]\n"+line))
}

func (d *Document) addAdditionalJS(existing, missing []string) (*Document, bool, error) {
	all := make([]any, 0, len(existing)+len(missing))
	for _, f := range existing {
		all = append(all, f)
	}
	for _, f := range missing {
		all = append(all, f)
	}
	want := cloneTree(d.tree)
	setPath(want, []string{"output", "html", "additional-js"}, all)

	line, err := keyValue("additional-js", all)
	if err != nil {
		return nil, false, err
	}

	src := string(d.src)
	var candidates []string
	if l, err := scan(src); err == nil {
		if a, found := l.array("output", "html", "additional-js"); found {
			quoted := make([]string, 0, len(missing))
			for _, f := range missing {
				q, err := quote(f)
				if err != nil {
					return nil, false, err
				}
				quoted = append(quoted, q)
			}
			candidates = append(candidates, insertIntoArray(src, a, quoted))
		} else if h, found := l.header("output", "html"); found {
			head := src[:h.end]
			if !strings.HasSuffix(head, "\n") {
				head += "\n"
			}
			candidates = append(candidates, head+line+src[h.end:])
		}
	}
	candidates = append(candidates, appendSection(src, "[output.html]\n"+line))

	return d.splice(want, candidates...)
}

// splice returns the first candidate source that decodes to want. When none
// does, want is re-encoded from scratch and the second result is true.
func (d *Document) splice(want map[string]any, candidates ...string) (*Document, bool, error) {
	for _, c := range candidates {
		tree, err := decode([]byte(c))
		if err == nil && reflect.DeepEqual(tree, want) {
			return &Document{src: []byte(c), tree: tree}, false, nil
		}
	}

	out, err := encode(want)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "encode configuration")
	}
	tree, err := decode(out)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "re-read encoded configuration")
	}
	return &Document{src: out, tree: tree}, true, nil
}

// appendSection adds a table section at the end of src, separated by a blank line.
func appendSection(src, section string) string {
	if src == "" {
		return section
	}
	if !strings.HasSuffix(src, "\n") {
		src += "\n"
	}
	return src + "\n" + section
}

// keyValue renders "key = value\n" using the TOML encoder.
func keyValue(key string, v any) (string, error) {
	out, err := encode(map[string]any{key: v})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "encode %s", key)
	}
	return string(out), nil
}

// quote renders s as a TOML string literal.
func quote(s string) (string, error) {
	kv, err := keyValue("v", s)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(strings.TrimPrefix(kv, "v = "), "\n"), nil
}

func cloneTree(tree map[string]any) map[string]any {
	out := make(map[string]any, len(tree))
	for k, v := range tree {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneTree(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	case []map[string]any:
		out := make([]map[string]any, len(v))
		for i, e := range v {
			out[i] = cloneTree(e)
		}
		return out
	default:
		return v
	}
}

// setPath stores v at path, creating intermediate tables. Callers check that
// existing intermediate values are tables.
func setPath(tree map[string]any, path []string, v any) {
	cur := tree
	for _, k := range path[:len(path)-1] {
		next, ok := cur[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[k] = next
		}
		cur = next
	}
	cur[path[len(path)-1]] = v
}
