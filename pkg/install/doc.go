// Package install copies a fixed set of static assets into a book directory.
//
// A [Manifest] pairs files in an [io/fs.FS] with destinations relative to
// the book root. [Install] copies every entry, skipping destinations that
// already exist unless [Options.Overwrite] is set:
//
//	report, err := install.Install(".", assets.Manifest(), install.Options{})
//	for _, r := range report.Skipped() {
//	    fmt.Println("kept existing", r.Dest)
//	}
//
// A failing entry does not stop the remaining copies. Every failure is
// recorded in the [Report] and joined into the returned error.
package install
