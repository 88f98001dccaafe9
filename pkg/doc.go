// Package pkg provides the libraries behind mdbook-wavedrom, an mdbook
// preprocessor that renders WaveDrom timing diagrams.
//
// # Overview
//
// mdbook runs preprocessors as child processes: it writes the book as JSON
// to stdin and reads the modified book back from stdout. mdbook-wavedrom
// replaces every ```wavedrom code block with a <script type="WaveDrom">
// element, and the WaveDrom scripts installed into the book draw the
// diagrams in the browser.
//
//	mdbook (stdin: [context, book])
//	         ↓
//	    [preprocess] package (protocol: decode, run, encode)
//	         ↓
//	    [book] package (chapter tree transform)
//	         ↓
//	    [wavedrom] package (fence rewrite)
//	         ↓
//	mdbook (stdout: book)
//
// # Quick Start
//
// Rewrite a single chapter:
//
//	import "github.com/matzehuels/mdbook-wavedrom/pkg/wavedrom"
//
//	html := wavedrom.Rewrite("```wavedrom\n{ signal: [{ name: 'clk', wave: 'p..' }] }\n```\n")
//
// Run as a preprocessor:
//
//	err := preprocess.Handle(wavedrom.New(logger), os.Stdin, os.Stdout, logger)
//
// # Main Packages
//
// ## Rendering
//
// [wavedrom] - Finds wavedrom fences with goldmark's CommonMark parser and
// rewrites them into script elements with deterministic ids.
//
// [book] - The mdbook book model with lossless JSON round trips and a
// shape-preserving [book.Transform].
//
// [preprocess] - The mdbook preprocessor protocol: renderer support checks
// and one-shot request handling.
//
// [preview] - A development server that renders a single chapter with its
// diagrams.
//
// ## Installation
//
// [bookconfig] - Reads book.toml and merges the preprocessor registration
// and scripts into it while keeping comments and layout.
//
// [install] - Copies an embedded asset manifest into a book directory.
//
// ## Shared
//
// [errors] - Coded errors shared by the render and install paths.
//
// [buildinfo] - Version information injected at build time.
//
// # Testing
//
//	go test ./...                        # All tests
//	go test ./pkg/bookconfig/...         # Specific package
//
// [wavedrom]: https://pkg.go.dev/github.com/matzehuels/mdbook-wavedrom/pkg/wavedrom
// [book]: https://pkg.go.dev/github.com/matzehuels/mdbook-wavedrom/pkg/book
// [preprocess]: https://pkg.go.dev/github.com/matzehuels/mdbook-wavedrom/pkg/preprocess
// [preview]: https://pkg.go.dev/github.com/matzehuels/mdbook-wavedrom/pkg/preview
// [bookconfig]: https://pkg.go.dev/github.com/matzehuels/mdbook-wavedrom/pkg/bookconfig
// [install]: https://pkg.go.dev/github.com/matzehuels/mdbook-wavedrom/pkg/install
// [errors]: https://pkg.go.dev/github.com/matzehuels/mdbook-wavedrom/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/mdbook-wavedrom/pkg/buildinfo
package pkg
