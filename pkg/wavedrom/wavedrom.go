package wavedrom

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/mdbook-wavedrom/pkg/book"
	"github.com/matzehuels/mdbook-wavedrom/pkg/preprocess"
)

// Name is the preprocessor key in book.toml.
const Name = "wavedrom"

// Preprocessor rewrites diagram blocks in every chapter of a book.
type Preprocessor struct {
	logger *log.Logger
}

// New returns a Preprocessor that logs to logger. A nil logger uses log.Default().
func New(logger *log.Logger) *Preprocessor {
	if logger == nil {
		logger = log.Default()
	}
	return &Preprocessor{logger: logger}
}

// Name implements preprocess.Preprocessor.
func (p *Preprocessor) Name() string { return Name }

// SupportsRenderer implements preprocess.Preprocessor. WaveDrom renders in
// the browser, so only the html renderer is supported.
func (p *Preprocessor) SupportsRenderer(renderer string) bool {
	return renderer == "html"
}

// Run implements preprocess.Preprocessor. The host configuration in ctx is
// not consulted; the preprocessor has no options.
func (p *Preprocessor) Run(ctx *preprocess.Context, b *book.Book) (*book.Book, error) {
	var diagrams, chapters int
	out := book.TransformChapters(b, func(c *book.Chapter) string {
		rewritten, n := rewrite(c.Identifier(), c.Content)
		if n > 0 {
			diagrams += n
			chapters++
		}
		return rewritten
	})

	var renderer string
	if ctx != nil {
		renderer = ctx.Renderer
	}
	p.logger.Debug("rewrote diagrams", "diagrams", diagrams, "chapters", chapters, "renderer", renderer)
	return out, nil
}

var _ preprocess.Preprocessor = (*Preprocessor)(nil)
