package wavedrom

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Language is the info string that marks a diagram block. Matching is exact
// and case-sensitive.
const Language = "wavedrom"

// idNamespace scopes the name-based UUIDs given to rendered diagrams.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://wavedrom.com/"))

// markdown mirrors the extensions mdbook turns on, so block boundaries are
// seen the same way the host sees them.
var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.Table,
		extension.Strikethrough,
		extension.TaskList,
		extension.Footnote,
	),
)

// Block is a well-formed diagram block found in a markdown text.
type Block struct {
	// Start and End delimit the replaced span: from the first character of
	// the opening fence to the last character of the closing fence.
	Start, End int

	// Payload is the raw diagram source between the fence lines.
	Payload string
}

// FindBlocks returns the terminated diagram blocks of src in document order.
func FindBlocks(src string) []Block {
	if !strings.Contains(src, Language) {
		return nil
	}

	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var blocks []Block
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if b, ok := locate(src, fb); ok {
			blocks = append(blocks, b)
		}
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// locate maps a parsed fenced block back onto the source text. It reports
// false when the block is not a diagram block or has no closing fence.
func locate(src string, fb *ast.FencedCodeBlock) (Block, bool) {
	if fb.Info == nil {
		return Block{}, false
	}
	info := fb.Info.Segment
	if src[info.Start:info.Stop] != Language {
		return Block{}, false
	}

	fenceChar, fenceLen, start := openFence(src, info.Start)
	if fenceLen < 3 {
		return Block{}, false
	}

	nl := strings.IndexByte(src[info.Stop:], '\n')
	if nl < 0 {
		return Block{}, false
	}
	contentStart := info.Stop + nl + 1

	closeLine := contentStart
	if lines := fb.Lines(); lines.Len() > 0 {
		closeLine = lines.At(lines.Len() - 1).Stop
	}
	end, ok := closeFence(src, closeLine, containers(fb), fenceChar, fenceLen)
	if !ok {
		return Block{}, false
	}

	return Block{
		Start:   start,
		End:     end,
		Payload: trimLineEnding(src[contentStart:closeLine]),
	}, true
}

// openFence walks back from the info string over optional blanks and the
// fence run. It returns the fence character, the run length and the offset of
// the run's first character.
func openFence(src string, infoStart int) (byte, int, int) {
	i := infoStart
	for i > 0 && (src[i-1] == ' ' || src[i-1] == '\t') {
		i--
	}
	if i == 0 {
		return 0, 0, 0
	}
	c := src[i-1]
	if c != '`' && c != '~' {
		return 0, 0, 0
	}
	n := 0
	for i > 0 && src[i-1] == c {
		i--
		n++
	}
	return c, n, i
}

// closeFence checks that the line starting at lineStart closes the block:
// it must continue every enclosing container and then hold a fence run of c
// at least minLen long, indented by at most three columns, with only blanks
// after it. It returns the offset just past the fence run.
func closeFence(src string, lineStart int, cs []ast.Node, c byte, minLen int) (int, bool) {
	i, ok := skipContainers(src, lineStart, cs)
	if !ok {
		return 0, false
	}
	i, width := skipBlanks(src, i, -1)
	if width > 3 {
		return 0, false
	}
	n := 0
	for i < len(src) && src[i] == c {
		i++
		n++
	}
	if n < minLen {
		return 0, false
	}
	end := i
	for i < len(src) && src[i] != '\n' {
		if src[i] != ' ' && src[i] != '\t' && src[i] != '\r' {
			return 0, false
		}
		i++
	}
	return end, true
}

// containers returns the block quotes and list items enclosing n, outermost
// first.
func containers(n ast.Node) []ast.Node {
	var cs []ast.Node
	for p := n.Parent(); p != nil; p = p.Parent() {
		switch p.(type) {
		case *ast.Blockquote, *ast.ListItem:
			cs = append(cs, p)
		}
	}
	slices.Reverse(cs)
	return cs
}

// skipContainers consumes the continuation prefix of every container on the
// line starting at i. A block quote needs its '>' marker and a list item
// needs its content indentation; a line lacking either has left the
// container, so a fence on it cannot close the block.
func skipContainers(src string, i int, cs []ast.Node) (int, bool) {
	for _, c := range cs {
		switch c := c.(type) {
		case *ast.Blockquote:
			j, width := skipBlanks(src, i, -1)
			if width > 3 || j >= len(src) || src[j] != '>' {
				return 0, false
			}
			i = j + 1
			if i < len(src) && src[i] == ' ' {
				i++
			}
		case *ast.ListItem:
			j, width := skipBlanks(src, i, c.Offset)
			if width < c.Offset {
				return 0, false
			}
			i = j
		}
	}
	return i, true
}

// skipBlanks skips spaces and tabs from i, stopping once limit columns are
// consumed (limit < 0 means no limit). It returns the new offset and the
// column width skipped; tabs advance to the next multiple of four.
func skipBlanks(src string, i, limit int) (int, int) {
	width := 0
	for i < len(src) && (limit < 0 || width < limit) {
		switch src[i] {
		case ' ':
			width++
		case '\t':
			width += 4 - width%4
		default:
			return i, width
		}
		i++
	}
	return i, width
}

// trimLineEnding removes the line break that belongs to the closing fence line.
func trimLineEnding(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

// Rewrite replaces every terminated diagram block in content with a script
// element. Text without diagram blocks is returned unchanged.
func Rewrite(content string) string {
	out, _ := rewrite("", content)
	return out
}

// RewriteChapter is Rewrite for the chapter identified by scope, usually its
// path. Element ids then stay distinct across chapters, which mdbook
// concatenates on its print page.
func RewriteChapter(scope, content string) string {
	out, _ := rewrite(scope, content)
	return out
}

func rewrite(scope, content string) (string, int) {
	blocks := FindBlocks(content)
	if len(blocks) == 0 {
		return content, 0
	}

	var sb strings.Builder
	sb.Grow(len(content) + len(blocks)*64)
	last := 0
	for i, b := range blocks {
		sb.WriteString(content[last:b.Start])
		sb.WriteString(Fragment(scope, b.Payload, i))
		last = b.End
	}
	sb.WriteString(content[last:])
	return sb.String(), len(blocks)
}

// Fragment renders a diagram payload as a WaveDrom script element. scope and
// ordinal, the block's position within its text, keep ids of identical
// diagrams distinct.
func Fragment(scope, payload string, ordinal int) string {
	return fmt.Sprintf(`<script type="WaveDrom" id="%s">%s</script>`, FragmentID(scope, payload, ordinal), payload)
}

// FragmentID returns the deterministic element id for a diagram.
func FragmentID(scope, payload string, ordinal int) string {
	name := fmt.Sprintf("%s\x00%d\x00%s", scope, ordinal, payload)
	return "wavedrom-" + uuid.NewSHA1(idNamespace, []byte(name)).String()
}
