package bookconfig

import (
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2/unstable"
)

// header is a standard table header. end is the offset just past its line.
type header struct {
	path []string
	end  int
}

// array is an array of strings assigned to a key.
type array struct {
	path []string

	// open and close are the offsets of the brackets.
	open, close int

	// last is the offset just past the last element, or past the comma that
	// follows it. It is open+1 for an empty array.
	last  int
	comma bool
	empty bool
}

// layout lists where standard tables and string arrays appear in a TOML
// document. Keys inside array tables ([[x]]) carry a "[]" path element so
// they never match a plain table path.
type layout struct {
	headers []header
	arrays  []array
}

func (l layout) header(path ...string) (header, bool) {
	for _, h := range l.headers {
		if slices.Equal(h.path, path) {
			return h, true
		}
	}
	return header{}, false
}

func (l layout) array(path ...string) (array, bool) {
	for _, a := range l.arrays {
		if slices.Equal(a.path, path) {
			return a, true
		}
	}
	return array{}, false
}

// scan locates table headers and string arrays in src.
func scan(src string) (layout, error) {
	p := unstable.Parser{KeepComments: true}
	p.Reset([]byte(src))

	var l layout
	var table []string
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table:
			path, end := keyPath(e)
			table = path
			l.headers = append(l.headers, header{path: path, end: lineEnd(src, end)})
		case unstable.ArrayTable:
			path, _ := keyPath(e)
			table = append(path, "[]")
		case unstable.KeyValue:
			v := e.Value()
			if v.Kind != unstable.Array {
				continue
			}
			key, end := keyPath(e)
			a, ok := locateArray(src, end, v)
			if !ok {
				continue
			}
			a.path = append(slices.Clone(table), key...)
			l.arrays = append(l.arrays, a)
		}
	}
	return l, p.Error()
}

// keyPath returns the parts of the key of a table or key/value expression and
// the offset just past its last part.
func keyPath(e *unstable.Node) ([]string, int) {
	var path []string
	end := 0
	it := e.Key()
	for it.Next() {
		k := it.Node()
		path = append(path, string(k.Data))
		end = rangeEnd(k.Raw)
	}
	return path, end
}

// locateArray maps an array node back onto src. keyEnd is the end of the key
// the array is assigned to. Arrays holding anything but strings and comments
// are not located.
func locateArray(src string, keyEnd int, v *unstable.Node) (array, bool) {
	a := array{open: keyEnd + strings.IndexByte(src[keyEnd:], '[')}
	a.last = a.open + 1
	a.empty = true

	tail := a.last
	var comments []unstable.Range
	it := v.Children()
	for it.Next() {
		n := it.Node()
		switch n.Kind {
		case unstable.String:
			a.last = rangeEnd(n.Raw)
			a.empty = false
			tail = a.last
			comments = comments[:0]
		case unstable.Comment:
			// Consecutive comment lines hang off the first one.
			for _, c := range commentRun(n) {
				comments = append(comments, c)
				tail = max(tail, rangeEnd(c))
			}
		default:
			return array{}, false
		}
	}
	a.close = tail + strings.IndexByte(src[tail:], ']')

	if !a.empty {
		if i := commaAfter(src, a.last, a.close, comments); i >= 0 {
			a.last, a.comma = i+1, true
		}
	}
	return a, true
}

func commentRun(n *unstable.Node) []unstable.Range {
	out := []unstable.Range{n.Raw}
	for c := n.Child(); c != nil; c = c.Next() {
		out = append(out, c.Raw)
	}
	return out
}

// commaAfter returns the offset of the separator in src[from:to], skipping
// the given comment ranges, or -1.
func commaAfter(src string, from, to int, comments []unstable.Range) int {
	for i := from; i < to; i++ {
		for _, c := range comments {
			if i == int(c.Offset) {
				i = rangeEnd(c)
			}
		}
		if i < to && src[i] == ',' {
			return i
		}
	}
	return -1
}

func rangeEnd(r unstable.Range) int { return int(r.Offset + r.Length) }

// lineEnd returns the offset just past the line break that follows i.
func lineEnd(src string, i int) int {
	nl := strings.IndexByte(src[i:], '\n')
	if nl < 0 {
		return len(src)
	}
	return i + nl + 1
}

// insertIntoArray appends quoted items to a, following the array's existing
// layout (single-line or one element per line).
func insertIntoArray(src string, a array, items []string) string {
	last := a.last

	var ins string
	switch {
	case a.empty:
		ins = strings.Join(items, ", ")
	case strings.Contains(src[last:a.close], "\n"):
		indent := lineIndent(src, last-1)
		var sb strings.Builder
		if !a.comma {
			sb.WriteString(",")
		}
		for i, item := range items {
			sb.WriteString("\n" + indent + item)
			if a.comma || i < len(items)-1 {
				sb.WriteString(",")
			}
		}
		ins = sb.String()
	case a.comma:
		ins = " " + strings.Join(items, ", ")
	default:
		ins = ", " + strings.Join(items, ", ")
	}
	return src[:last] + ins + src[last:]
}

// lineIndent returns the leading whitespace of the line containing offset i.
func lineIndent(src string, i int) string {
	ls := strings.LastIndexByte(src[:i], '\n') + 1
	end := ls
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return src[ls:end]
}
