package publisher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	config "github.com/crosspost-app/crosspost/configs"
	"github.com/crosspost-app/crosspost/internal/models"
)

func newYoutubeFixture(assets []models.MediaAsset) (*youtubePublisher, *fixture) {
	f := newFixture(config.Config{}, &models.Account{
		ID: 7, UserID: 42, Platform: models.PlatformYoutube,
		AccountID: "channel-1", AccessToken: "yt-token",
	}, assets)
	return newYoutubePublisher(f.deps), f
}

func TestYoutubeRejectsInvalidAssets(t *testing.T) {
	tests := []struct {
		name   string
		assets []models.MediaAsset
	}{
		{
			name:   "no assets",
			assets: nil,
		},
		{
			name: "more than one video",
			assets: []models.MediaAsset{
				{URL: "https://media.example.com/a.mp4", MimeType: "video/mp4"},
				{URL: "https://media.example.com/b.mp4", MimeType: "video/mp4"},
			},
		},
		{
			name: "image instead of video",
			assets: []models.MediaAsset{
				{URL: "https://media.example.com/a.jpg", MimeType: "image/jpeg"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, f := newYoutubeFixture(tt.assets)

			err := p.Publish(context.Background(), testRequest(models.PlatformYoutube))

			assert.ErrorAs(t, err, new(*ValidationError))
			assert.Empty(t, f.posts.updates, "a rejected post must not change target status")
		})
	}
}
