package publisher

import (
	"context"
	"log/slog"

	"github.com/crosspost-app/crosspost/internal/media"
)

// tempAssets tracks intermediate transcoded uploads made during one publish
// attempt. cleanup deletes every tracked URL whether the attempt succeeded or
// failed; deletion failures are logged and never escalate.
type tempAssets struct {
	uploader media.Uploader
	log      *slog.Logger
	urls     []string
}

func newTempAssets(uploader media.Uploader, log *slog.Logger) *tempAssets {
	return &tempAssets{uploader: uploader, log: log}
}

func (t *tempAssets) track(url string) {
	t.urls = append(t.urls, url)
}

func (t *tempAssets) cleanup(ctx context.Context) {
	for _, url := range t.urls {
		if err := t.uploader.Delete(ctx, url); err != nil {
			t.log.Warn("failed to delete temporary asset", "url", url, "error", err)
		}
	}
	t.urls = nil
}
