package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/h2non/filetype"
)

// File is a fully buffered media payload with its resolved MIME type.
type File struct {
	Data        []byte
	ContentType string
}

// Downloader fetches media bytes for a publish attempt. Assets are fetched
// fresh every attempt; nothing is cached between retries.
type Downloader interface {
	Fetch(ctx context.Context, url string) (*File, error)
}

type httpDownloader struct {
	client *http.Client
}

func NewDownloader(client *http.Client) Downloader {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	return &httpDownloader{client: client}
}

func (d *httpDownloader) Fetch(ctx context.Context, url string) (*File, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error downloading media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response status downloading media: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading media body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
			contentType = kind.MIME.Value
		}
	}

	return &File{Data: data, ContentType: contentType}, nil
}
