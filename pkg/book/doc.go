// Package book models the chapter tree mdbook hands to preprocessors.
//
// A [Book] is an ordered list of [Item] values. Item is a closed set of
// variants:
//
//   - [*Chapter]: a titled unit of markdown. A chapter with SubItems is a
//     group; its own Content is still a regular chapter body.
//   - [Separator]: a structural marker with no content.
//   - [PartTitle]: a part heading between groups of chapters.
//
// The JSON encoding matches mdbook's serde representation (externally tagged
// enum variants, "Separator" as a bare string). Fields this package does not
// know about are kept as raw JSON and written back unchanged, so a decode and
// encode round trip never drops data mdbook sent.
//
// [Transform] rewrites every chapter body through a function and returns a
// new tree of the same shape:
//
//	out := book.Transform(b, strings.ToUpper)
package book
