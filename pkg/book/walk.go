package book

import "slices"

// Transform returns a new book of the same shape with every chapter body
// replaced by fn(body). Separators and part titles are carried over as is;
// sub-items are transformed recursively in declared order.
//
// The input book is not modified.
func Transform(b *Book, fn func(string) string) *Book {
	return TransformChapters(b, func(c *Chapter) string { return fn(c.Content) })
}

// TransformChapters is Transform with access to the whole chapter, for
// rewrites that depend on its identity. fn must not modify the chapter.
func TransformChapters(b *Book, fn func(*Chapter) string) *Book {
	if b == nil {
		return nil
	}
	return &Book{
		Sections: transformItems(b.Sections, fn),
		extra:    b.extra,
	}
}

func transformItems(items []Item, fn func(*Chapter) string) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, item := range items {
		switch it := item.(type) {
		case *Chapter:
			out[i] = transformChapter(it, fn)
		case Separator, PartTitle:
			out[i] = it
		default:
			// Unknown implementations cannot exist outside this package.
			out[i] = item
		}
	}
	return out
}

func transformChapter(c *Chapter, fn func(*Chapter) string) *Chapter {
	if c == nil {
		return nil
	}
	nc := *c
	nc.Content = fn(c)
	nc.SubItems = transformItems(c.SubItems, fn)
	// Clone keeps empty slices non-nil, so "number": [] stays [] on the wire.
	nc.Number = slices.Clone(c.Number)
	nc.ParentNames = slices.Clone(c.ParentNames)
	return &nc
}

// Walk calls visit for every item in depth-first, declared order. Sub-items
// of a chapter are visited right after the chapter itself. Walk stops at the
// first error returned by visit.
func Walk(items []Item, visit func(Item) error) error {
	for _, item := range items {
		if err := visit(item); err != nil {
			return err
		}
		if ch, ok := item.(*Chapter); ok && ch != nil {
			if err := Walk(ch.SubItems, visit); err != nil {
				return err
			}
		}
	}
	return nil
}

// Chapters returns every chapter of the book in depth-first order.
func (b *Book) Chapters() []*Chapter {
	var out []*Chapter
	_ = Walk(b.Sections, func(item Item) error {
		if ch, ok := item.(*Chapter); ok && ch != nil {
			out = append(out, ch)
		}
		return nil
	})
	return out
}
