package publisher

import (
	"context"
	"fmt"

	"github.com/crosspost-app/crosspost/internal/models"
	"github.com/crosspost-app/crosspost/internal/transfer"
)

// facebookPublisher posts to a Facebook page through the Graph API. Single
// media goes straight to /photos or /videos; multi-image posts upload each
// photo unpublished and attach the ids to one /feed post.
type facebookPublisher struct {
	deps
}

func newFacebookPublisher(d deps) *facebookPublisher {
	return &facebookPublisher{deps: d}
}

func (p *facebookPublisher) Platform() string { return models.PlatformFacebook }

func (p *facebookPublisher) Publish(ctx context.Context, req PublishRequest) error {
	return handleWith(ctx, p.errs, models.PlatformFacebook, req, func() error {
		return p.publish(ctx, req)
	})
}

func (p *facebookPublisher) publish(ctx context.Context, req PublishRequest) error {
	acc, err := p.account(ctx, req)
	if err != nil {
		return err
	}

	pageID := acc.PageID
	if req.Target.Options.FacebookPageID != "" {
		pageID = req.Target.Options.FacebookPageID
	}
	if pageID == "" {
		return newValidationError(models.PlatformFacebook, "no page id configured for account")
	}

	assets, err := p.assets(ctx, req.PostID)
	if err != nil {
		return err
	}

	_, videos := models.CountMedia(assets)
	if len(assets) > 1 && videos > 0 {
		return newValidationError(models.PlatformFacebook, "multi-media posts support images only, not video")
	}

	switch {
	case len(assets) == 0:
		if err := p.postFeed(ctx, pageID, acc.AccessToken, req.Caption, nil); err != nil {
			return err
		}
		return p.markDone(ctx, req)
	case len(assets) == 1 && assets[0].IsVideo():
		return p.postVideo(ctx, pageID, acc.AccessToken, req, assets[0])
	case len(assets) == 1:
		return p.postPhoto(ctx, pageID, acc.AccessToken, req, assets[0])
	default:
		return p.postMultiPhoto(ctx, pageID, acc.AccessToken, req, assets)
	}
}

func (p *facebookPublisher) postPhoto(ctx context.Context, pageID, token string, req PublishRequest, asset models.MediaAsset) error {
	payload := transfer.FacebookPhotoRequest{
		URL:         asset.URL,
		Caption:     req.Caption,
		AccessToken: token,
	}
	var result transfer.GraphIDResponse
	url := fmt.Sprintf("%s/%s/photos", p.cfg.GraphAPIBaseURL, pageID)
	if err := p.postJSON(ctx, models.PlatformFacebook, url, nil, payload, &result); err != nil {
		return err
	}
	if result.ID == "" {
		return &ProtocolError{Platform: models.PlatformFacebook, Message: "no photo id returned"}
	}
	return p.markDone(ctx, req)
}

func (p *facebookPublisher) postVideo(ctx context.Context, pageID, token string, req PublishRequest, asset models.MediaAsset) error {
	payload := transfer.FacebookVideoRequest{
		FileURL:     asset.URL,
		Description: req.Caption,
		AccessToken: token,
	}
	var result transfer.GraphIDResponse
	url := fmt.Sprintf("%s/%s/videos", p.cfg.GraphAPIBaseURL, pageID)
	if err := p.postJSON(ctx, models.PlatformFacebook, url, nil, payload, &result); err != nil {
		return err
	}
	if result.ID == "" {
		return &ProtocolError{Platform: models.PlatformFacebook, Message: "no video id returned"}
	}
	return p.markDone(ctx, req)
}

// postMultiPhoto uploads each image unpublished, then creates one feed post
// referencing them all. Processed images go through temporary storage and are
// removed after the attempt regardless of outcome.
func (p *facebookPublisher) postMultiPhoto(ctx context.Context, pageID, token string, req PublishRequest, assets []models.MediaAsset) error {
	temp := newTempAssets(p.uploader, p.log)
	defer temp.cleanup(ctx)

	unpublished := false
	attached := make([]transfer.FacebookAttachedMedia, 0, len(assets))

	for _, asset := range assets {
		file, err := p.dl.Fetch(ctx, asset.URL)
		if err != nil {
			return err
		}
		processed, err := p.images.ProcessForPlatform(ctx, file.Data, models.PlatformFacebook)
		if err != nil {
			return err
		}
		tempURL, err := p.uploader.Upload(ctx, tempImageKey(file.ContentType), processed, file.ContentType)
		if err != nil {
			return err
		}
		temp.track(tempURL)

		payload := transfer.FacebookPhotoRequest{
			URL:         tempURL,
			Published:   &unpublished,
			AccessToken: token,
		}
		var result transfer.GraphIDResponse
		url := fmt.Sprintf("%s/%s/photos", p.cfg.GraphAPIBaseURL, pageID)
		if err := p.postJSON(ctx, models.PlatformFacebook, url, nil, payload, &result); err != nil {
			return err
		}
		if result.ID == "" {
			return &ProtocolError{Platform: models.PlatformFacebook, Message: "no photo id returned"}
		}
		attached = append(attached, transfer.FacebookAttachedMedia{MediaFBID: result.ID})
	}

	if err := p.postFeed(ctx, pageID, token, req.Caption, attached); err != nil {
		return err
	}
	return p.markDone(ctx, req)
}

func (p *facebookPublisher) postFeed(ctx context.Context, pageID, token, message string, attached []transfer.FacebookAttachedMedia) error {
	payload := transfer.FacebookFeedRequest{
		Message:       message,
		AttachedMedia: attached,
		AccessToken:   token,
	}
	var result transfer.GraphIDResponse
	url := fmt.Sprintf("%s/%s/feed", p.cfg.GraphAPIBaseURL, pageID)
	if err := p.postJSON(ctx, models.PlatformFacebook, url, nil, payload, &result); err != nil {
		return err
	}
	if result.ID == "" {
		return &ProtocolError{Platform: models.PlatformFacebook, Message: "no feed post id returned"}
	}
	return nil
}
