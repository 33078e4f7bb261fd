package publisher

import (
	"bytes"
	"context"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/crosspost-app/crosspost/internal/models"
)

// youtubePublisher uploads through the official client, which drives the
// resumable upload session under the hood.
type youtubePublisher struct {
	deps
}

func newYoutubePublisher(d deps) *youtubePublisher {
	return &youtubePublisher{deps: d}
}

func (p *youtubePublisher) Platform() string { return models.PlatformYoutube }

func (p *youtubePublisher) Publish(ctx context.Context, req PublishRequest) error {
	return handleWith(ctx, p.errs, models.PlatformYoutube, req, func() error {
		return p.publish(ctx, req)
	})
}

func (p *youtubePublisher) publish(ctx context.Context, req PublishRequest) error {
	acc, err := p.account(ctx, req)
	if err != nil {
		return err
	}

	assets, err := p.assets(ctx, req.PostID)
	if err != nil {
		return err
	}
	if len(assets) != 1 || !assets[0].IsVideo() {
		return newValidationError(models.PlatformYoutube, "uploads require exactly one video asset")
	}

	file, err := p.dl.Fetch(ctx, assets[0].URL)
	if err != nil {
		return err
	}

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: acc.AccessToken}))
	service, err := youtube.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return &UploadError{Platform: models.PlatformYoutube, Stage: "service init", Err: err}
	}

	title := req.Target.Title
	if title == "" && req.Post != nil {
		title = req.Post.Title
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       title,
			Description: req.Caption,
			CategoryId:  "22",
		},
		Status: &youtube.VideoStatus{PrivacyStatus: "public"},
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	uploaded, err := call.Media(bytes.NewReader(file.Data)).Context(ctx).Do()
	if err != nil {
		return &UploadError{Platform: models.PlatformYoutube, Stage: "resumable upload", Err: err}
	}

	p.log.Info("published to youtube", "video_id", uploaded.Id, "post_id", req.PostID)
	return p.markDone(ctx, req)
}
