package install

import (
	stderrors "errors"
	"os"
	"path/filepath"

	"github.com/matzehuels/mdbook-wavedrom/pkg/errors"
)

// Action is what [Install] did with one manifest entry.
type Action int

const (
	ActionCopied Action = iota
	ActionOverwritten
	ActionSkipped
	ActionFailed
)

func (a Action) String() string {
	switch a {
	case ActionCopied:
		return "copied"
	case ActionOverwritten:
		return "overwritten"
	case ActionSkipped:
		return "skipped"
	case ActionFailed:
		return "failed"
	}
	return "unknown"
}

// Options controls [Install].
type Options struct {
	// Overwrite replaces destinations that already exist.
	Overwrite bool
}

// Result records the outcome for one manifest entry.
type Result struct {
	Dest   string // manifest destination
	Path   string // file system path written, empty if the destination was rejected
	Action Action
	Err    error // set for ActionFailed
}

// Report lists one result per manifest entry, in manifest order.
type Report struct {
	Results []Result
}

// Copied returns the results that wrote a file.
func (r Report) Copied() []Result {
	return r.filter(func(res Result) bool {
		return res.Action == ActionCopied || res.Action == ActionOverwritten
	})
}

// Skipped returns the results whose destination already existed.
func (r Report) Skipped() []Result {
	return r.filter(func(res Result) bool { return res.Action == ActionSkipped })
}

// Failed returns the results that could not be installed.
func (r Report) Failed() []Result {
	return r.filter(func(res Result) bool { return res.Action == ActionFailed })
}

func (r Report) filter(keep func(Result) bool) []Result {
	var out []Result
	for _, res := range r.Results {
		if keep(res) {
			out = append(out, res)
		}
	}
	return out
}

// Install copies every entry of m into dir. Existing destinations are left
// alone unless opts.Overwrite is set. Failures do not stop the remaining
// entries; the returned error joins all of them.
func Install(dir string, m Manifest, opts Options) (Report, error) {
	var (
		report Report
		errs   []error
	)
	for _, e := range m.entries {
		res := installEntry(dir, m, e, opts)
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
		report.Results = append(report.Results, res)
	}
	return report, stderrors.Join(errs...)
}

func installEntry(dir string, m Manifest, e Entry, opts Options) Result {
	res := Result{Dest: e.Dest}
	fail := func(err error) Result {
		res.Action = ActionFailed
		res.Err = err
		return res
	}

	if err := errors.ValidatePath(e.Dest); err != nil {
		return fail(errors.Wrap(errors.ErrCodeInvalidPath, err, "asset destination %q", e.Dest))
	}
	res.Path = filepath.Join(dir, filepath.FromSlash(e.Dest))

	exists := false
	switch fi, err := os.Lstat(res.Path); {
	case err == nil && fi.IsDir():
		return fail(errors.New(errors.ErrCodeAssetCopy, "%s is a directory", res.Path))
	case err == nil:
		exists = true
	case !os.IsNotExist(err):
		return fail(errors.Wrap(errors.ErrCodeAssetCopy, err, "stat %s", res.Path))
	}
	if exists && !opts.Overwrite {
		res.Action = ActionSkipped
		return res
	}

	data, err := m.ReadFile(e)
	if err != nil {
		return fail(errors.Wrap(errors.ErrCodeAssetCopy, err, "read embedded %s", e.Source))
	}
	if err := os.MkdirAll(filepath.Dir(res.Path), 0o755); err != nil {
		return fail(errors.Wrap(errors.ErrCodeAssetCopy, err, "create directory for %s", res.Path))
	}
	if err := os.WriteFile(res.Path, data, 0o644); err != nil {
		return fail(errors.Wrap(errors.ErrCodeAssetCopy, err, "write %s", res.Path))
	}

	res.Action = ActionCopied
	if exists {
		res.Action = ActionOverwritten
	}
	return res
}
