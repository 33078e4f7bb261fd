package publisher

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/crosspost-app/crosspost/internal/models"
	"github.com/crosspost-app/crosspost/internal/transfer"
)

const blueskyMaxImages = 4

// blueskyPublisher posts via the AT Protocol XRPC endpoints. The account
// record carries the handle in AccountID and the app password in AccessToken;
// a fresh session is created per attempt.
type blueskyPublisher struct {
	deps
}

func newBlueskyPublisher(d deps) *blueskyPublisher {
	return &blueskyPublisher{deps: d}
}

func (p *blueskyPublisher) Platform() string { return models.PlatformBluesky }

func (p *blueskyPublisher) Publish(ctx context.Context, req PublishRequest) error {
	return handleWith(ctx, p.errs, models.PlatformBluesky, req, func() error {
		return p.publish(ctx, req)
	})
}

func (p *blueskyPublisher) publish(ctx context.Context, req PublishRequest) error {
	acc, err := p.account(ctx, req)
	if err != nil {
		return err
	}

	assets, err := p.assets(ctx, req.PostID)
	if err != nil {
		return err
	}

	images, videos := models.CountMedia(assets)
	if videos > 0 {
		return newValidationError(models.PlatformBluesky, "only image attachments are supported")
	}
	if images > blueskyMaxImages {
		return newValidationError(models.PlatformBluesky, "posts are limited to %d images", blueskyMaxImages)
	}
	if utf8.RuneCountInString(req.Caption) > p.cfg.BlueskyCharLimit {
		return newValidationError(models.PlatformBluesky, "posts are limited to %d characters", p.cfg.BlueskyCharLimit)
	}

	session, err := p.createSession(ctx, acc)
	if err != nil {
		return err
	}

	var embed *transfer.BlueskyImagesEmbed
	if len(assets) > 0 {
		blobs := make([]transfer.BlueskyImage, 0, len(assets))
		for _, asset := range assets {
			file, err := p.dl.Fetch(ctx, asset.URL)
			if err != nil {
				return err
			}
			var uploaded transfer.BlueskyUploadBlobResponse
			err = p.postBinary(ctx, models.PlatformBluesky,
				p.cfg.BlueskyBaseURL+"/com.atproto.repo.uploadBlob",
				file.Data, file.ContentType, bearer(session.AccessJwt), &uploaded)
			if err != nil {
				return &UploadError{Platform: models.PlatformBluesky, Stage: "uploadBlob", Err: err}
			}
			blobs = append(blobs, transfer.BlueskyImage{Image: uploaded.Blob})
		}
		embed = &transfer.BlueskyImagesEmbed{Type: "app.bsky.embed.images", Images: blobs}
	}

	record := transfer.BlueskyCreateRecordRequest{
		Repo:       session.DID,
		Collection: "app.bsky.feed.post",
		Record: transfer.BlueskyPostRecord{
			Type:      "app.bsky.feed.post",
			Text:      req.Caption,
			CreatedAt: time.Now().UTC().Format(time.RFC3339),
			Langs:     []string{"en"},
			Embed:     embed,
		},
	}

	var created transfer.BlueskyCreateRecordResponse
	err = p.postJSON(ctx, models.PlatformBluesky,
		p.cfg.BlueskyBaseURL+"/com.atproto.repo.createRecord",
		bearer(session.AccessJwt), record, &created)
	if err != nil {
		return err
	}
	if created.URI == "" {
		return &ProtocolError{Platform: models.PlatformBluesky, Message: "createRecord returned no uri"}
	}

	p.log.Info("posted to bluesky", "uri", created.URI, "post_id", req.PostID)
	return p.markDone(ctx, req)
}

func (p *blueskyPublisher) createSession(ctx context.Context, acc *models.Account) (*transfer.BlueskyCreateSessionResponse, error) {
	reqBody := transfer.BlueskyCreateSessionRequest{
		Identifier: acc.AccountID,
		Password:   acc.AccessToken,
	}
	var session transfer.BlueskyCreateSessionResponse
	err := p.postJSON(ctx, models.PlatformBluesky,
		p.cfg.BlueskyBaseURL+"/com.atproto.server.createSession", nil, reqBody, &session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &session, nil
}
