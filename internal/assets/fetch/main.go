// Command fetch downloads the WaveDrom release scripts embedded by package
// assets. It runs from `go generate ./internal/assets`.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mdbook-wavedrom/internal/assets"
)

const defaultBaseURL = "https://unpkg.com"

// sources maps files of the wavedrom npm package to embedded asset names.
var sources = []struct{ path, dest string }{
	{"wavedrom.min.js", assets.WaveDromJS},
	{"skins/default.js", assets.SkinJS},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, TimeFormat: "15:04:05.00"})
	if err := command(logger).ExecuteContext(ctx); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func command(logger *log.Logger) *cobra.Command {
	var (
		version string
		dir     string
		baseURL string
	)
	cmd := &cobra.Command{
		Use:           "fetch",
		Short:         "Download the WaveDrom scripts embedded in mdbook-wavedrom",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := &fetcher{
				client:  &http.Client{Timeout: 30 * time.Second},
				baseURL: baseURL,
				logger:  logger,
			}
			return f.fetchAll(cmd.Context(), version, dir)
		},
	}
	cmd.Flags().StringVar(&version, "version", "3.5.0", "wavedrom npm package version")
	cmd.Flags().StringVar(&dir, "dir", ".", "directory to write the scripts to")
	cmd.Flags().StringVar(&baseURL, "base-url", defaultBaseURL, "npm CDN to download from")
	return cmd
}

type fetcher struct {
	client  *http.Client
	baseURL string
	logger  *log.Logger
}

func (f *fetcher) fetchAll(ctx context.Context, version, dir string) error {
	for _, src := range sources {
		url := fmt.Sprintf("%s/wavedrom@%s/%s", f.baseURL, version, src.path)
		data, err := f.download(ctx, url)
		if err != nil {
			return err
		}
		dest := filepath.Join(dir, src.dest)
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dest, err)
		}
		f.logger.Info("fetched", "url", url, "file", dest, "bytes", len(data))
	}
	return nil
}

func (f *fetcher) download(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := retry(ctx, 3, time.Second, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return &retryableError{err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
			f.logger.Warn("retrying", "url", url, "status", resp.Status)
			return &retryableError{fmt.Errorf("GET %s: %s", url, resp.Status)}
		case resp.StatusCode != http.StatusOK:
			return fmt.Errorf("GET %s: %s", url, resp.Status)
		}

		if body, err = io.ReadAll(resp.Body); err != nil {
			return &retryableError{fmt.Errorf("read %s: %w", url, err)}
		}
		return nil
	})
	return body, err
}
