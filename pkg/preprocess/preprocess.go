package preprocess

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mdbook-wavedrom/pkg/book"
	"github.com/matzehuels/mdbook-wavedrom/pkg/errors"
)

// MDBookVersion is the mdbook release the wire format was taken from. A host
// reporting a different version only triggers a warning.
const MDBookVersion = "0.4.40"

// Preprocessor is a book transformation plugged into mdbook.
type Preprocessor interface {
	// Name is the key under [preprocessor] in book.toml.
	Name() string

	// SupportsRenderer reports whether the preprocessor should run for the
	// given renderer (e.g. "html").
	SupportsRenderer(renderer string) bool

	// Run transforms the book. It must not modify its input.
	Run(ctx *Context, b *book.Book) (*book.Book, error)
}

// Context is the host information sent alongside the book.
type Context struct {
	Root          string          `json:"root"`
	Config        json.RawMessage `json:"config"`
	Renderer      string          `json:"renderer"`
	MDBookVersion string          `json:"mdbook_version"`
}

// Supports answers a capability query.
func Supports(p Preprocessor, renderer string) bool {
	return p.SupportsRenderer(renderer)
}

// ParseInput decodes the [context, book] payload mdbook writes to stdin.
func ParseInput(r io.Reader) (*Context, *book.Book, error) {
	var parts []json.RawMessage
	if err := json.NewDecoder(r).Decode(&parts); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeProtocol, err, "decode preprocessor input")
	}
	if len(parts) != 2 {
		return nil, nil, errors.New(errors.ErrCodeProtocol, "preprocessor input: expected [context, book], got %d elements", len(parts))
	}

	var ctx Context
	if err := json.Unmarshal(parts[0], &ctx); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeProtocol, err, "decode context")
	}
	b := new(book.Book)
	if err := json.Unmarshal(parts[1], b); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeProtocol, err, "decode book")
	}
	return &ctx, b, nil
}

// Handle serves one render request: it reads the payload from r, runs p and
// writes the resulting book to w. Nothing is written to w on error.
func Handle(p Preprocessor, r io.Reader, w io.Writer, logger *log.Logger) error {
	ctx, b, err := ParseInput(r)
	if err != nil {
		return err
	}

	if ctx.MDBookVersion != MDBookVersion {
		logger.Warn("mdbook version mismatch",
			"preprocessor", p.Name(),
			"built_against", MDBookVersion,
			"called_from", ctx.MDBookVersion)
	}

	out, err := p.Run(ctx, b)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeProtocol, err, "encode book")
	}
	if _, err := buf.WriteTo(w); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "write book")
	}
	return nil
}
