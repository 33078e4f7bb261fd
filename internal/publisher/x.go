package publisher

import (
	"context"
	"encoding/base64"
	"net/url"
	"unicode/utf8"

	"github.com/crosspost-app/crosspost/internal/models"
	"github.com/crosspost-app/crosspost/internal/transfer"
)

const xMaxMedia = 4

// xPublisher uploads media through the v1.1 simple upload endpoint and
// creates the tweet through the v2 API.
type xPublisher struct {
	deps
}

func newXPublisher(d deps) *xPublisher {
	return &xPublisher{deps: d}
}

func (p *xPublisher) Platform() string { return models.PlatformX }

func (p *xPublisher) Publish(ctx context.Context, req PublishRequest) error {
	return handleWith(ctx, p.errs, models.PlatformX, req, func() error {
		return p.publish(ctx, req)
	})
}

func (p *xPublisher) publish(ctx context.Context, req PublishRequest) error {
	acc, err := p.account(ctx, req)
	if err != nil {
		return err
	}

	if utf8.RuneCountInString(req.Caption) > p.cfg.XCharLimit {
		return newValidationError(models.PlatformX, "posts are limited to %d characters", p.cfg.XCharLimit)
	}

	assets, err := p.assets(ctx, req.PostID)
	if err != nil {
		return err
	}
	if len(assets) > xMaxMedia {
		return newValidationError(models.PlatformX, "posts are limited to %d media items", xMaxMedia)
	}
	images, videos := models.CountMedia(assets)
	if images > 0 && videos > 0 {
		return newValidationError(models.PlatformX, "mixed video and image posts are not supported")
	}
	if videos > 1 {
		return newValidationError(models.PlatformX, "at most one video per post")
	}

	var mediaIDs []string
	for _, asset := range assets {
		id, err := p.uploadMedia(ctx, acc.AccessToken, asset)
		if err != nil {
			return err
		}
		mediaIDs = append(mediaIDs, id)
	}

	tweet := transfer.XTweetRequest{Text: req.Caption}
	if len(mediaIDs) > 0 {
		tweet.Media = &transfer.XTweetMedia{MediaIDs: mediaIDs}
	}

	var created transfer.XTweetResponse
	if err := p.postJSON(ctx, models.PlatformX, p.cfg.XAPIBaseURL+"/2/tweets", bearer(acc.AccessToken), tweet, &created); err != nil {
		return err
	}
	if created.Data.ID == "" {
		return &ProtocolError{Platform: models.PlatformX, Message: "no tweet id returned"}
	}

	p.log.Info("published to x", "tweet_id", created.Data.ID, "post_id", req.PostID)
	return p.markDone(ctx, req)
}

func (p *xPublisher) uploadMedia(ctx context.Context, token string, asset models.MediaAsset) (string, error) {
	file, err := p.dl.Fetch(ctx, asset.URL)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("media_data", base64.StdEncoding.EncodeToString(file.Data))
	if asset.IsVideo() {
		form.Set("media_category", "tweet_video")
	}

	var result transfer.XMediaUploadResponse
	err = p.postBinary(ctx, models.PlatformX, p.cfg.XUploadBaseURL+"/1.1/media/upload.json",
		[]byte(form.Encode()), "application/x-www-form-urlencoded", bearer(token), &result)
	if err != nil {
		return "", &UploadError{Platform: models.PlatformX, Stage: "media upload", Err: err}
	}
	if result.MediaIDString == "" {
		return "", &ProtocolError{Platform: models.PlatformX, Message: "no media id returned from upload"}
	}
	return result.MediaIDString, nil
}
