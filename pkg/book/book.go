package book

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Item is one entry of a book's table of contents.
// The set of implementations is closed: *Chapter, Separator and PartTitle.
type Item interface {
	isItem()
}

// Book is the root of the chapter tree.
type Book struct {
	Sections []Item

	// extra holds top-level fields other than "sections", e.g. "__non_exhaustive".
	extra map[string]json.RawMessage
}

// Chapter is a markdown unit. Chapters with SubItems act as groups.
type Chapter struct {
	Name        string
	Content     string
	Number      []uint32 // nil for unnumbered chapters
	SubItems    []Item
	Path        *string // nil for draft chapters
	SourcePath  *string
	ParentNames []string

	extra map[string]json.RawMessage
}

// Separator is a horizontal rule in the table of contents.
type Separator struct{}

// PartTitle is a heading that introduces a part of the book.
type PartTitle string

func (*Chapter) isItem() {}
func (Separator) isItem() {}
func (PartTitle) isItem() {}

const (
	variantChapter   = "Chapter"
	variantSeparator = "Separator"
	variantPartTitle = "PartTitle"
)

// IsGroup reports whether the chapter has nested items.
func (c *Chapter) IsGroup() bool { return len(c.SubItems) > 0 }

// Identifier returns the chapter's path, falling back to its name for drafts.
func (c *Chapter) Identifier() string {
	if c.Path != nil {
		return *c.Path
	}
	return c.Name
}

type bookJSON struct {
	Sections []json.RawMessage `json:"sections"`
}

// UnmarshalJSON decodes mdbook's Book representation.
func (b *Book) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw bookJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	items, err := decodeItems(raw.Sections)
	if err != nil {
		return err
	}
	delete(fields, "sections")
	b.Sections = items
	b.extra = fields
	return nil
}

// MarshalJSON encodes the book, including fields preserved from decoding.
func (b *Book) MarshalJSON() ([]byte, error) {
	sections, err := encodeItems(b.Sections)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(b.extra)+1)
	for k, v := range b.extra {
		out[k] = v
	}
	out["sections"] = sections
	return marshal(out)
}

type chapterJSON struct {
	Name        string            `json:"name"`
	Content     *string           `json:"content"`
	Number      []uint32          `json:"number"`
	SubItems    []json.RawMessage `json:"sub_items"`
	Path        *string           `json:"path"`
	SourcePath  *string           `json:"source_path"`
	ParentNames []string          `json:"parent_names"`
}

var chapterFields = []string{"name", "content", "number", "sub_items", "path", "source_path", "parent_names"}

// UnmarshalJSON decodes a chapter. A null or missing content decodes as "".
func (c *Chapter) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var raw chapterJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	items, err := decodeItems(raw.SubItems)
	if err != nil {
		return fmt.Errorf("chapter %q: %w", raw.Name, err)
	}
	for _, f := range chapterFields {
		delete(fields, f)
	}

	*c = Chapter{
		Name:        raw.Name,
		Number:      raw.Number,
		SubItems:    items,
		Path:        raw.Path,
		SourcePath:  raw.SourcePath,
		ParentNames: raw.ParentNames,
		extra:       fields,
	}
	if raw.Content != nil {
		c.Content = *raw.Content
	}
	return nil
}

// MarshalJSON encodes a chapter. Nil slices are written as empty arrays
// because mdbook rejects null for sub_items and parent_names.
func (c *Chapter) MarshalJSON() ([]byte, error) {
	subItems, err := encodeItems(c.SubItems)
	if err != nil {
		return nil, fmt.Errorf("chapter %q: %w", c.Name, err)
	}
	parents := c.ParentNames
	if parents == nil {
		parents = []string{}
	}
	known, err := marshal(struct {
		Name        string          `json:"name"`
		Content     string          `json:"content"`
		Number      []uint32        `json:"number"`
		SubItems    json.RawMessage `json:"sub_items"`
		Path        *string         `json:"path"`
		SourcePath  *string         `json:"source_path"`
		ParentNames []string        `json:"parent_names"`
	}{c.Name, c.Content, c.Number, subItems, c.Path, c.SourcePath, parents})
	if err != nil || len(c.extra) == 0 {
		return known, err
	}

	out := make(map[string]json.RawMessage, len(chapterFields)+len(c.extra))
	for k, v := range c.extra {
		out[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		out[k] = v
	}
	return marshal(out)
}

// marshal is json.Marshal without HTML escaping; chapter bodies are markdown
// full of '<' and '&'.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// decodeItems decodes a list of externally tagged BookItem values.
func decodeItems(raws []json.RawMessage) ([]Item, error) {
	items := make([]Item, 0, len(raws))
	for i, raw := range raws {
		item, err := decodeItem(raw)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func decodeItem(raw json.RawMessage) (Item, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var tag string
		if err := json.Unmarshal(raw, &tag); err != nil {
			return nil, err
		}
		if tag != variantSeparator {
			return nil, fmt.Errorf("unknown unit variant %q", tag)
		}
		return Separator{}, nil
	}

	var variant map[string]json.RawMessage
	if err := json.Unmarshal(raw, &variant); err != nil {
		return nil, err
	}
	if len(variant) != 1 {
		return nil, fmt.Errorf("expected a single variant key, got %d", len(variant))
	}
	for tag, body := range variant {
		switch tag {
		case variantChapter:
			ch := new(Chapter)
			if err := json.Unmarshal(body, ch); err != nil {
				return nil, err
			}
			return ch, nil
		case variantPartTitle:
			var title string
			if err := json.Unmarshal(body, &title); err != nil {
				return nil, err
			}
			return PartTitle(title), nil
		case variantSeparator:
			return Separator{}, nil
		default:
			return nil, fmt.Errorf("unknown variant %q", tag)
		}
	}
	panic("unreachable")
}

// encodeItems encodes items as a JSON array, writing [] for nil.
func encodeItems(items []Item) (json.RawMessage, error) {
	raws := make([]json.RawMessage, 0, len(items))
	for i, item := range items {
		raw, err := encodeItem(item)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		raws = append(raws, raw)
	}
	return marshal(raws)
}

func encodeItem(item Item) (json.RawMessage, error) {
	switch it := item.(type) {
	case *Chapter:
		return marshal(map[string]*Chapter{variantChapter: it})
	case Separator:
		return marshal(variantSeparator)
	case PartTitle:
		return marshal(map[string]string{variantPartTitle: string(it)})
	default:
		return nil, fmt.Errorf("unsupported item type %T", item)
	}
}
