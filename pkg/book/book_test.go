package book

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// sampleBook mirrors what mdbook 0.4 sends for a small book with a part
// title, a separator, a nested chapter and a draft chapter.
const sampleBook = `{
  "sections": [
    {"PartTitle": "Basics"},
    {"Chapter": {
      "name": "Intro",
      "content": "# Intro\n",
      "number": [1],
      "sub_items": [
        {"Chapter": {
          "name": "Signals",
          "content": "` + "```wavedrom\\n{signal: []}\\n```" + `\n",
          "number": [1, 1],
          "sub_items": [],
          "path": "intro/signals.md",
          "source_path": "intro/signals.md",
          "parent_names": ["Intro"]
        }}
      ],
      "path": "intro.md",
      "source_path": "intro.md",
      "parent_names": [],
      "future_field": {"kept": true}
    }},
    "Separator",
    {"Chapter": {
      "name": "Draft",
      "content": "",
      "number": null,
      "sub_items": [],
      "path": null,
      "source_path": null,
      "parent_names": []
    }}
  ],
  "__non_exhaustive": null
}`

func decodeSample(t *testing.T) *Book {
	t.Helper()
	var b Book
	if err := json.Unmarshal([]byte(sampleBook), &b); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	return &b
}

func TestUnmarshalBook(t *testing.T) {
	b := decodeSample(t)

	if len(b.Sections) != 4 {
		t.Fatalf("len(Sections) = %d, want 4", len(b.Sections))
	}
	if pt, ok := b.Sections[0].(PartTitle); !ok || pt != "Basics" {
		t.Errorf("Sections[0] = %#v, want PartTitle(Basics)", b.Sections[0])
	}
	if _, ok := b.Sections[2].(Separator); !ok {
		t.Errorf("Sections[2] = %#v, want Separator", b.Sections[2])
	}

	intro, ok := b.Sections[1].(*Chapter)
	if !ok {
		t.Fatalf("Sections[1] = %T, want *Chapter", b.Sections[1])
	}
	if !intro.IsGroup() {
		t.Error("Intro should be a group")
	}
	if intro.Identifier() != "intro.md" {
		t.Errorf("Identifier() = %q, want intro.md", intro.Identifier())
	}
	signals := intro.SubItems[0].(*Chapter)
	if diff := cmp.Diff([]uint32{1, 1}, signals.Number); diff != "" {
		t.Errorf("Number mismatch (-want +got):\n%s", diff)
	}

	draft := b.Sections[3].(*Chapter)
	if draft.Path != nil || draft.Number != nil {
		t.Errorf("draft chapter should have nil path and number, got %v %v", draft.Path, draft.Number)
	}
	if draft.Identifier() != "Draft" {
		t.Errorf("draft Identifier() = %q, want Draft", draft.Identifier())
	}
}

func TestRoundTripPreservesPayload(t *testing.T) {
	b := decodeSample(t)

	out, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var want, got any
	if err := json.Unmarshal([]byte(sampleBook), &want); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestNullContentDecodesEmpty(t *testing.T) {
	var ch Chapter
	if err := json.Unmarshal([]byte(`{"name":"x","content":null,"sub_items":[]}`), &ch); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if ch.Content != "" {
		t.Errorf("Content = %q, want empty", ch.Content)
	}

	out, err := json.Marshal(&ch)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(out), `"content":""`) || !strings.Contains(string(out), `"parent_names":[]`) {
		t.Errorf("Marshal = %s, want empty content and parent_names array", out)
	}
}

func TestUnmarshalRejectsUnknownVariants(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown unit", `{"sections":["Spacer"]}`},
		{"unknown tag", `{"sections":[{"Appendix":{}}]}`},
		{"two tags", `{"sections":[{"Chapter":{},"PartTitle":"x"}]}`},
		{"nested unknown", `{"sections":[{"Chapter":{"name":"a","sub_items":[42]}}]}`},
		{"not an object", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Book
			if err := json.Unmarshal([]byte(tt.input), &b); err == nil {
				t.Errorf("Unmarshal(%s) succeeded, want error", tt.input)
			}
		})
	}
}
