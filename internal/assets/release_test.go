//go:build release

package assets

import (
	"strings"
	"testing"
)

// Run with -tags release before tagging a version.
func TestReleaseEmbedsUpstreamScripts(t *testing.T) {
	if missing := Missing(); len(missing) > 0 {
		t.Fatalf("stand-in scripts embedded: %s; run go generate ./internal/assets", strings.Join(missing, ", "))
	}
}
