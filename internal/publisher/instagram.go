package publisher

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/crosspost-app/crosspost/internal/models"
	"github.com/crosspost-app/crosspost/internal/transfer"
)

const (
	instagramMaxCarouselImages = 10
	instagramPollInterval      = 5 * time.Second
	// instagramMaxPolls caps readiness polling at roughly five minutes.
	instagramMaxPolls = 60
)

// instagramPublisher drives the Graph API media-container protocol: create a
// container, poll its status_code until terminal, then media_publish.
type instagramPublisher struct {
	deps
	pollInterval time.Duration
}

func newInstagramPublisher(d deps) *instagramPublisher {
	return &instagramPublisher{deps: d, pollInterval: instagramPollInterval}
}

func (p *instagramPublisher) Platform() string { return models.PlatformInstagram }

func (p *instagramPublisher) Publish(ctx context.Context, req PublishRequest) error {
	return handleWith(ctx, p.errs, models.PlatformInstagram, req, func() error {
		return p.publish(ctx, req)
	})
}

func (p *instagramPublisher) publish(ctx context.Context, req PublishRequest) error {
	acc, err := p.account(ctx, req)
	if err != nil {
		return err
	}

	assets, err := p.assets(ctx, req.PostID)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		return newValidationError(models.PlatformInstagram, "post has no media")
	}

	images, videos := models.CountMedia(assets)
	if images > 0 && videos > 0 {
		return newValidationError(models.PlatformInstagram, "mixed video and image posts are not supported")
	}
	if videos > 1 {
		return newValidationError(models.PlatformInstagram, "at most one video per post")
	}

	switch {
	case videos == 1:
		return p.publishVideo(ctx, acc, req, assets[0])
	case len(assets) == 1:
		return p.publishSingleImage(ctx, acc, req, assets[0])
	default:
		if len(assets) > instagramMaxCarouselImages {
			return newValidationError(models.PlatformInstagram, "carousels are limited to %d images", instagramMaxCarouselImages)
		}
		if req.Target.Options.InstagramLocationID != "" {
			return newValidationError(models.PlatformInstagram, "location tags are not supported on carousels")
		}
		return p.publishCarousel(ctx, acc, req, assets)
	}
}

func (p *instagramPublisher) publishSingleImage(ctx context.Context, acc *models.Account, req PublishRequest, asset models.MediaAsset) error {
	container := transfer.InstagramMediaRequest{
		ImageURL:    asset.URL,
		Caption:     req.Caption,
		LocationID:  req.Target.Options.InstagramLocationID,
		AccessToken: acc.AccessToken,
	}
	containerID, err := p.createContainer(ctx, acc.AccountID, container)
	if err != nil {
		return err
	}
	if err := p.awaitContainer(ctx, containerID, acc.AccessToken); err != nil {
		return err
	}
	if err := p.publishContainer(ctx, acc, containerID); err != nil {
		return err
	}
	return p.markDone(ctx, req)
}

// publishVideo uploads the transcoded video to temporary storage so the
// platform can pull it, with cleanup after the attempt either way.
func (p *instagramPublisher) publishVideo(ctx context.Context, acc *models.Account, req PublishRequest, asset models.MediaAsset) error {
	temp := newTempAssets(p.uploader, p.log)
	defer temp.cleanup(ctx)

	file, err := p.dl.Fetch(ctx, asset.URL)
	if err != nil {
		return err
	}
	processed, err := p.videos.ProcessForPlatform(ctx, file.Data, models.PlatformInstagram)
	if err != nil {
		return err
	}
	tempURL, err := p.uploader.Upload(ctx, tempVideoKey(file.ContentType), processed, file.ContentType)
	if err != nil {
		return err
	}
	temp.track(tempURL)

	container := transfer.InstagramMediaRequest{
		MediaType:   "REELS",
		VideoURL:    tempURL,
		Caption:     req.Caption,
		AccessToken: acc.AccessToken,
	}
	if req.Post != nil && req.Post.CoverURL != "" {
		container.CoverURL = req.Post.CoverURL
	}

	containerID, err := p.createContainer(ctx, acc.AccountID, container)
	if err != nil {
		return err
	}
	if err := p.awaitContainer(ctx, containerID, acc.AccessToken); err != nil {
		return err
	}
	if err := p.publishContainer(ctx, acc, containerID); err != nil {
		return err
	}
	return p.markDone(ctx, req)
}

// publishCarousel creates every item container, polls them all concurrently
// and only creates the parent container once each item finished. If any item
// fails the parent is never created.
func (p *instagramPublisher) publishCarousel(ctx context.Context, acc *models.Account, req PublishRequest, assets []models.MediaAsset) error {
	itemIDs := make([]string, 0, len(assets))
	for _, asset := range assets {
		item := transfer.InstagramMediaRequest{
			ImageURL:       asset.URL,
			IsCarouselItem: true,
			AccessToken:    acc.AccessToken,
		}
		id, err := p.createContainer(ctx, acc.AccountID, item)
		if err != nil {
			return err
		}
		itemIDs = append(itemIDs, id)
	}

	err := pollAll(ctx, models.PlatformInstagram, itemIDs, func(ctx context.Context, id string) (ContainerStatus, error) {
		return p.containerStatus(ctx, id, acc.AccessToken)
	}, pollOptions{Interval: p.pollInterval, MaxPolls: instagramMaxPolls})
	if err != nil {
		return err
	}

	parent := transfer.InstagramMediaRequest{
		MediaType:   "CAROUSEL",
		Caption:     req.Caption,
		Children:    itemIDs,
		AccessToken: acc.AccessToken,
	}
	parentID, err := p.createContainer(ctx, acc.AccountID, parent)
	if err != nil {
		return err
	}
	if err := p.awaitContainer(ctx, parentID, acc.AccessToken); err != nil {
		return err
	}
	if err := p.publishContainer(ctx, acc, parentID); err != nil {
		return err
	}
	return p.markDone(ctx, req)
}

func (p *instagramPublisher) createContainer(ctx context.Context, accountID string, payload transfer.InstagramMediaRequest) (string, error) {
	var result transfer.GraphIDResponse
	endpoint := fmt.Sprintf("%s/%s/media", p.cfg.InstagramAPIBaseURL, accountID)
	if err := p.postJSON(ctx, models.PlatformInstagram, endpoint, nil, payload, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", &ProtocolError{Platform: models.PlatformInstagram, Message: "no container id returned"}
	}
	return result.ID, nil
}

func (p *instagramPublisher) awaitContainer(ctx context.Context, containerID, token string) error {
	_, err := pollContainer(ctx, models.PlatformInstagram, containerID, func(ctx context.Context) (ContainerStatus, error) {
		return p.containerStatus(ctx, containerID, token)
	}, pollOptions{Interval: p.pollInterval, MaxPolls: instagramMaxPolls})
	return err
}

func (p *instagramPublisher) containerStatus(ctx context.Context, containerID, token string) (ContainerStatus, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=status_code&access_token=%s",
		p.cfg.InstagramAPIBaseURL, containerID, url.QueryEscape(token))

	var result transfer.GraphStatusResponse
	if err := p.getJSON(ctx, models.PlatformInstagram, endpoint, nil, &result); err != nil {
		return "", err
	}
	return ContainerStatus(result.StatusCode), nil
}

func (p *instagramPublisher) publishContainer(ctx context.Context, acc *models.Account, containerID string) error {
	payload := transfer.InstagramPublishRequest{
		CreationID:  containerID,
		AccessToken: acc.AccessToken,
	}
	var result transfer.GraphIDResponse
	endpoint := fmt.Sprintf("%s/%s/media_publish", p.cfg.InstagramAPIBaseURL, acc.AccountID)
	if err := p.postJSON(ctx, models.PlatformInstagram, endpoint, nil, payload, &result); err != nil {
		return err
	}
	if result.ID == "" {
		return &ProtocolError{Platform: models.PlatformInstagram, Message: "no media id returned from media_publish"}
	}
	p.log.Info("published to instagram", "media_id", result.ID)
	return nil
}
