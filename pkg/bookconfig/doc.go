// Package bookconfig reads and updates an mdbook book.toml without
// disturbing what the user wrote.
//
// A [Document] keeps the original bytes next to the decoded table tree.
// [Merge] adds the entries a preprocessor needs (its [preprocessor.<name>]
// table and its output.html.additional-js files) by splicing text into the
// original bytes, so comments, key order and whitespace survive. Every splice
// is checked by decoding the result and comparing it to the expected tree;
// when no splice can be verified (inline tables, unusual dotted-key layouts)
// the tree is re-encoded as a whole and the report says so.
//
// Merging is monotonic and idempotent: existing entries are never removed or
// reordered, and merging an already merged document reports no change.
package bookconfig
