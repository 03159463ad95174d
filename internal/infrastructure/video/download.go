package video

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// downloadHeaders mimic a desktop browser; short-video CDNs reject bare
// clients.
var downloadHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Accept":          "*/*",
	"Accept-Language": "en-us,en;q=0.5",
}

// Downloader fetches a remote video to a local temp file. It tries yt-dlp
// first (handles share links and picks a sane format), then falls back to
// a direct HTTP stream of the URL.
type Downloader struct {
	httpClient *resty.Client
	log        zerolog.Logger
}

// NewDownloader creates a downloader with a streaming HTTP fallback.
func NewDownloader(log zerolog.Logger) *Downloader {
	return &Downloader{
		httpClient: resty.New().
			SetTimeout(2 * time.Minute).
			SetHeaders(downloadHeaders),
		log: log,
	}
}

// FetchVideo downloads url to a temp file and returns its path. The caller
// owns cleanup.
func (d *Downloader) FetchVideo(ctx context.Context, url string) (string, error) {
	tmp, err := os.CreateTemp("", "framecart-video-*.mp4")
	if err != nil {
		return "", fmt.Errorf("create video file: %w", err)
	}
	tmp.Close()
	path := tmp.Name()

	primaryErr := d.fetchWithYtdlp(ctx, url, path)
	if primaryErr == nil {
		return path, nil
	}
	d.log.Debug().Err(primaryErr).Str("url", url).Msg("yt-dlp fetch failed, trying direct stream")

	if fallbackErr := d.fetchDirect(ctx, url, path); fallbackErr != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to download video: primary: %v, fallback: %w", primaryErr, fallbackErr)
	}
	return path, nil
}

func (d *Downloader) fetchWithYtdlp(ctx context.Context, url, path string) error {
	cmd := exec.CommandContext(ctx, "yt-dlp",
		"--quiet",
		"--no-playlist",
		"--format", "mp4/best[height<=720]",
		"--force-overwrites",
		"--output", path,
		url,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("yt-dlp: %w: %s", err, string(output))
	}
	return nil
}

func (d *Downloader) fetchDirect(ctx context.Context, url, path string) error {
	resp, err := d.httpClient.R().
		SetContext(ctx).
		SetOutput(path).
		Get(url)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("direct stream failed: status %d", resp.StatusCode())
	}
	return nil
}
