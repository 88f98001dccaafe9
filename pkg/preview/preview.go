package preview

import (
	"bytes"
	"context"
	stderrors "errors"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/matzehuels/mdbook-wavedrom/pkg/errors"
	"github.com/matzehuels/mdbook-wavedrom/pkg/wavedrom"
)

const shutdownTimeout = 5 * time.Second

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<main>
{{.Body}}
</main>
{{range .Scripts}}<script src="/assets/{{.}}"></script>
{{end}}</body>
</html>
`))

// Options configures a [Server].
type Options struct {
	Path    string      // markdown file to serve
	Assets  fs.FS       // files served under /assets/
	Scripts []string    // asset names loaded by the page, in order
	Logger  *log.Logger // request log; nil uses log.Default()
}

// Server renders one markdown file per request.
type Server struct {
	opts Options
	md   goldmark.Markdown
}

// New returns a server for opts.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Server{
		opts: opts,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Footnote),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Handler returns the HTTP routes of the preview.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.handlePage)
	if s.opts.Assets != nil {
		r.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(s.opts.Assets))))
	}
	return r
}

// Render reads the markdown file and returns the complete preview page.
func (s *Server) Render() ([]byte, error) {
	src, err := os.ReadFile(s.opts.Path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeIO, err, "read %s", s.opts.Path)
	}

	var body bytes.Buffer
	if err := s.md.Convert([]byte(wavedrom.Rewrite(string(src))), &body); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", s.opts.Path)
	}

	var out bytes.Buffer
	err = page.Execute(&out, struct {
		Title   string
		Body    template.HTML
		Scripts []string
	}{
		Title:   filepath.Base(s.opts.Path),
		Body:    template.HTML(body.String()),
		Scripts: s.opts.Scripts,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render %s", s.opts.Path)
	}
	return out.Bytes(), nil
}

// Serve handles requests on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	data, err := s.Render()
	if err != nil {
		s.opts.Logger.Error("render failed", "file", s.opts.Path, "err", err)
		http.Error(w, errors.UserMessage(err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.opts.Logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond))
	})
}
