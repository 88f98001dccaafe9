package bookconfig

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mdbook-wavedrom/pkg/errors"
)

var req = Requirements{
	Preprocessor: "wavedrom",
	Command:      "mdbook-wavedrom",
	AdditionalJS: []string{"wavedrom.min.js", "wavedrom-skin-default.js", "wavedrom-init.js"},
}

const wantPreprocessor = "\n[preprocessor.wavedrom]\ncommand = \"mdbook-wavedrom\"\n"

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func TestMergeSplicesText(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "default book",
			src:  "[book]\nauthors = [\"Jane\"]\nlanguage = \"en\"\nsrc = \"src\"\ntitle = \"My Book\"\n",
			want: "[book]\nauthors = [\"Jane\"]\nlanguage = \"en\"\nsrc = \"src\"\ntitle = \"My Book\"\n" +
				wantPreprocessor +
				"\n[output.html]\nadditional-js = [\"wavedrom.min.js\", \"wavedrom-skin-default.js\", \"wavedrom-init.js\"]\n",
		},
		{
			name: "no trailing newline",
			src:  "[book]\ntitle = \"x\"",
			want: "[book]\ntitle = \"x\"\n" + wantPreprocessor +
				"\n[output.html]\nadditional-js = [\"wavedrom.min.js\", \"wavedrom-skin-default.js\", \"wavedrom-init.js\"]\n",
		},
		{
			name: "single line array with comments",
			src: "# My book\n[book]\ntitle = \"x\" # inline\n\n[output.html]\n# assets\n" +
				"additional-js = [\"custom.js\"]\ndefault-theme = \"light\"\n",
			want: "# My book\n[book]\ntitle = \"x\" # inline\n\n[output.html]\n# assets\n" +
				"additional-js = [\"custom.js\", \"wavedrom.min.js\", \"wavedrom-skin-default.js\", \"wavedrom-init.js\"]\n" +
				"default-theme = \"light\"\n" + wantPreprocessor,
		},
		{
			name: "multi line array with trailing comma",
			src:  "[output.html]\nadditional-js = [\n    \"custom.js\",\n]\n",
			want: "[output.html]\nadditional-js = [\n    \"custom.js\",\n    \"wavedrom.min.js\",\n" +
				"    \"wavedrom-skin-default.js\",\n    \"wavedrom-init.js\",\n]\n" + wantPreprocessor,
		},
		{
			name: "multi line array without trailing comma",
			src:  "[output.html]\nadditional-js = [\n  \"custom.js\" # mine\n]\n",
			want: "[output.html]\nadditional-js = [\n  \"custom.js\",\n  \"wavedrom.min.js\",\n" +
				"  \"wavedrom-skin-default.js\",\n  \"wavedrom-init.js\" # mine\n]\n" + wantPreprocessor,
		},
		{
			name: "empty array",
			src:  "[output.html]\nadditional-js = []\n",
			want: "[output.html]\nadditional-js = [\"wavedrom.min.js\", \"wavedrom-skin-default.js\", \"wavedrom-init.js\"]\n" +
				wantPreprocessor,
		},
		{
			name: "partially installed",
			src: "[preprocessor.wavedrom]\ncommand = \"mdbook-wavedrom\"\n\n" +
				"[output.html]\nadditional-js = [\"wavedrom.min.js\", \"mine.js\"]\n",
			want: "[preprocessor.wavedrom]\ncommand = \"mdbook-wavedrom\"\n\n" +
				"[output.html]\nadditional-js = [\"wavedrom.min.js\", \"mine.js\", \"wavedrom-skin-default.js\", \"wavedrom-init.js\"]\n",
		},
		{
			name: "html table without key",
			src:  "[output.html]\ndefault-theme = \"ayu\"\n\n[output.html.print]\nenable = false\n",
			want: "[output.html]\nadditional-js = [\"wavedrom.min.js\", \"wavedrom-skin-default.js\", \"wavedrom-init.js\"]\n" +
				"default-theme = \"ayu\"\n\n[output.html.print]\nenable = false\n" + wantPreprocessor,
		},
		{
			name: "dotted key at root",
			src:  "output.html.additional-js = [\"a.js\"]\n",
			want: "output.html.additional-js = [\"a.js\", \"wavedrom.min.js\", \"wavedrom-skin-default.js\", \"wavedrom-init.js\"]\n" +
				wantPreprocessor,
		},
		{
			name: "header text inside multi line string",
			src:  "[book]\ndescription = \"\"\"\n[output.html]\n\"\"\"\n\n[output.html]\ndefault-theme = \"ayu\"\n",
			want: "[book]\ndescription = \"\"\"\n[output.html]\n\"\"\"\n\n[output.html]\n" +
				"additional-js = [\"wavedrom.min.js\", \"wavedrom-skin-default.js\", \"wavedrom-init.js\"]\n" +
				"default-theme = \"ayu\"\n" + wantPreprocessor,
		},
		{
			name: "brackets and commas in array comments",
			src:  "[output.html]\nadditional-js = [\n  \"custom.js\", # keep ] and ,\n  # more, ]\n]\n",
			want: "[output.html]\nadditional-js = [\n  \"custom.js\",\n  \"wavedrom.min.js\",\n" +
				"  \"wavedrom-skin-default.js\",\n  \"wavedrom-init.js\", # keep ] and ,\n  # more, ]\n]\n" +
				wantPreprocessor,
		},
		{
			name: "other preprocessor kept",
			src:  "[preprocessor.katex]\nafter = [\"links\"]\n",
			want: "[preprocessor.katex]\nafter = [\"links\"]\n" + wantPreprocessor +
				"\n[output.html]\nadditional-js = [\"wavedrom.min.js\", \"wavedrom-skin-default.js\", \"wavedrom-init.js\"]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rep, err := Merge(mustParse(t, tt.src), req)
			if err != nil {
				t.Fatalf("Merge: %v", err)
			}
			if !rep.Changed() {
				t.Error("Changed() = false, want true")
			}
			if rep.Reformatted {
				t.Error("Reformatted = true, want a text splice")
			}
			if diff := cmp.Diff(tt.want, string(got.Bytes())); diff != "" {
				t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMergeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"[book]\ntitle = \"x\"\n",
		"[output.html]\nadditional-js = [\n    \"custom.js\",\n]\n",
		"output = { html = { default-theme = \"ayu\" } }\n",
	}

	for _, src := range inputs {
		once, rep, err := Merge(mustParse(t, src), req)
		if err != nil {
			t.Fatalf("Merge(%q): %v", src, err)
		}
		if !rep.Changed() {
			t.Errorf("first Merge(%q) reported no change", src)
		}

		twice, rep, err := Merge(once, req)
		if err != nil {
			t.Fatalf("second Merge(%q): %v", src, err)
		}
		if rep.Changed() {
			t.Errorf("second Merge(%q) reported a change: %+v", src, rep)
		}
		if diff := cmp.Diff(string(once.Bytes()), string(twice.Bytes())); diff != "" {
			t.Errorf("second Merge(%q) changed bytes (-once +twice):\n%s", src, diff)
		}
	}
}

func TestMergeReport(t *testing.T) {
	src := "[preprocessor.wavedrom]\ncommand = \"custom-cmd\"\n\n[output.html]\nadditional-js = [\"wavedrom-init.js\", \"x.js\"]\n"
	doc := mustParse(t, src)

	got, rep, err := Merge(doc, req)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if rep.AddedPreprocessor {
		t.Error("existing preprocessor table should not be re-added")
	}
	if diff := cmp.Diff([]string{"wavedrom.min.js", "wavedrom-skin-default.js"}, rep.AddedFiles); diff != "" {
		t.Errorf("AddedFiles mismatch (-want +got):\n%s", diff)
	}

	if cmd, _ := got.Lookup("preprocessor", "wavedrom", "command"); cmd != "custom-cmd" {
		t.Errorf("command = %v, want the user's custom-cmd", cmd)
	}
	files, _, err := got.AdditionalJS()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"wavedrom-init.js", "x.js", "wavedrom.min.js", "wavedrom-skin-default.js"}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Errorf("additional-js mismatch (-want +got):\n%s", diff)
	}

	if string(doc.Bytes()) != src {
		t.Error("Merge modified its input document")
	}
}

func TestMergeFallsBackToReencode(t *testing.T) {
	src := "output = { html = { default-theme = \"ayu\" } }\n\n[book]\ntitle = \"x\"\n"

	got, rep, err := Merge(mustParse(t, src), req)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !rep.Reformatted {
		t.Error("Reformatted = false, want true for an inline output table")
	}
	if theme, _ := got.Lookup("output", "html", "default-theme"); theme != "ayu" {
		t.Errorf("default-theme = %v, want ayu", theme)
	}
	if title, _ := got.Lookup("book", "title"); title != "x" {
		t.Errorf("book.title = %v, want x", title)
	}
	files, _, err := got.AdditionalJS()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(req.AdditionalJS, files); diff != "" {
		t.Errorf("additional-js mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"preprocessor not a table", "preprocessor = 1\n"},
		{"wavedrom not a table", "[preprocessor]\nwavedrom = true\n"},
		{"output not a table", "output = \"html\"\n"},
		{"html not a table", "[output]\nhtml = 3\n"},
		{"additional-js not an array", "[output.html]\nadditional-js = \"x.js\"\n"},
		{"additional-js not strings", "[output.html]\nadditional-js = [1, 2]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Merge(mustParse(t, tt.src), req)
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("Merge() error = %v, want %s", err, errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestMergeRejectsBadPreprocessorName(t *testing.T) {
	bad := req
	bad.Preprocessor = "wave.drom"
	if _, _, err := Merge(mustParse(t, ""), bad); err == nil {
		t.Error("Merge() with a dotted preprocessor name succeeded, want error")
	}
}

func TestMergeDeduplicatesRequirements(t *testing.T) {
	dup := req
	dup.AdditionalJS = []string{"a.js", "a.js"}
	got, rep, err := Merge(mustParse(t, ""), dup)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if diff := cmp.Diff([]string{"a.js"}, rep.AddedFiles); diff != "" {
		t.Errorf("AddedFiles mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(string(got.Bytes()), "additional-js = [\"a.js\"]") {
		t.Errorf("unexpected output:\n%s", got.Bytes())
	}
}
