// Package preview serves a single markdown chapter with its WaveDrom
// diagrams rendered, for iterating on diagrams without a full book build.
//
// Every request re-reads the file, rewrites its wavedrom blocks with
// [wavedrom.Rewrite] and renders the result with goldmark. The WaveDrom
// scripts are served under /assets/.
//
//	srv := preview.New(preview.Options{Path: "src/timing.md", Assets: assets.FS(), Scripts: scripts})
//	ln, _ := net.Listen("tcp", "127.0.0.1:3000")
//	err := srv.Serve(ctx, ln)
package preview
