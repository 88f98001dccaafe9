package preview

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/charmbracelet/log"
)

const chapter = "# Timing\n\n```wavedrom\n{ signal: [{ name: \"clk\", wave: \"p.....|...\" }] }\n```\n"

func newTestServer(t *testing.T, content string) (*Server, string, *bytes.Buffer) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "timing.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	var logs bytes.Buffer
	logger := log.New(&logs)
	logger.SetLevel(log.DebugLevel)
	srv := New(Options{
		Path:    path,
		Assets:  fstest.MapFS{"wavedrom.min.js": {Data: []byte("var WaveDrom;")}},
		Scripts: []string{"wavedrom.min.js"},
		Logger:  logger,
	})
	return srv, path, &logs
}

func get(t *testing.T, h http.Handler, target string) (*http.Response, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	resp := rec.Result()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(body)
}

func TestPage(t *testing.T) {
	srv, _, logs := newTestServer(t, chapter)

	resp, body := get(t, srv.Handler(), "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %q", resp.StatusCode, body)
	}
	for _, want := range []string{
		"<title>timing.md</title>",
		"<h1>Timing</h1>",
		`<script type="WaveDrom" id="wavedrom-`,
		`{ signal: [{ name: "clk", wave: "p.....|..." }] }`,
		`<script src="/assets/wavedrom.min.js"></script>`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("page missing %q:\n%s", want, body)
		}
	}
	if strings.Contains(body, "language-wavedrom") {
		t.Error("wavedrom block rendered as code")
	}
	if !strings.Contains(logs.String(), "status=200") {
		t.Errorf("request not logged: %q", logs.String())
	}
}

func TestPageRereadsFile(t *testing.T) {
	srv, path, _ := newTestServer(t, chapter)
	h := srv.Handler()

	get(t, h, "/")
	if err := os.WriteFile(path, []byte("# Changed\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, body := get(t, h, "/")
	if !strings.Contains(body, "<h1>Changed</h1>") {
		t.Errorf("page not re-rendered:\n%s", body)
	}
}

func TestPageMissingFile(t *testing.T) {
	srv, path, _ := newTestServer(t, chapter)
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	resp, body := get(t, srv.Handler(), "/")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	if !strings.Contains(body, "timing.md") {
		t.Errorf("error body %q should name the file", body)
	}
}

func TestAssets(t *testing.T) {
	srv, _, _ := newTestServer(t, chapter)
	h := srv.Handler()

	resp, body := get(t, h, "/assets/wavedrom.min.js")
	if resp.StatusCode != http.StatusOK || body != "var WaveDrom;" {
		t.Errorf("asset = %d %q", resp.StatusCode, body)
	}
	if resp, _ := get(t, h, "/assets/missing.js"); resp.StatusCode != http.StatusNotFound {
		t.Errorf("missing asset status = %d, want 404", resp.StatusCode)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	srv, _, _ := newTestServer(t, chapter)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}
