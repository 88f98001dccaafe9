// Package preprocess implements mdbook's command-line preprocessor protocol.
//
// mdbook drives a preprocessor in two ways:
//
//  1. Capability query: "<cmd> supports <renderer>". The preprocessor answers
//     with its exit status alone; stdin is never read.
//  2. Render request: "<cmd>" with a JSON array [context, book] on stdin. The
//     preprocessor writes the transformed book as JSON to stdout.
//
// [Supports] answers the first, [Handle] serves the second. Handle buffers
// the encoded book and only writes it once the whole transform succeeded, so
// a failing run never leaves a partial book on stdout.
package preprocess
