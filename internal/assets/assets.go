// Package assets embeds the browser scripts that render WaveDrom diagrams.
//
// wavedrom.min.js and wavedrom-skin-default.js are the upstream WaveDrom
// distribution, refreshed with `go generate`. wavedrom-init.js renders all
// diagrams once the page has loaded.
package assets

import (
	"embed"
	"io/fs"
	"strings"

	"github.com/matzehuels/mdbook-wavedrom/pkg/install"
)

//go:generate go run ./fetch -version 3.5.0 -dir .

// Script file names, also used as their destinations in the book directory.
const (
	WaveDromJS = "wavedrom.min.js"
	SkinJS     = "wavedrom-skin-default.js"
	InitJS     = "wavedrom-init.js"
)

//go:embed *.js
var files embed.FS

// stubMarker appears in the stand-in scripts checked into the repository.
// `go generate` replaces them with the upstream files.
const stubMarker = "placeholder. Run `go generate ./internal/assets`"

// FS returns the embedded scripts.
func FS() fs.FS { return files }

// Manifest returns the scripts to install into a book. The order is the
// order in which the browser must load them.
func Manifest() install.Manifest {
	return install.NewManifest(files,
		install.Entry{Source: WaveDromJS, Dest: WaveDromJS},
		install.Entry{Source: SkinJS, Dest: SkinJS},
		install.Entry{Source: InitJS, Dest: InitJS},
	)
}

// Missing lists the upstream scripts that are embedded as stand-ins. A binary
// built from such a tree installs scripts that cannot render diagrams.
func Missing() []string {
	var out []string
	for _, name := range []string{WaveDromJS, SkinJS} {
		data, err := fs.ReadFile(files, name)
		if err != nil || strings.Contains(string(data), stubMarker) {
			out = append(out, name)
		}
	}
	return out
}
