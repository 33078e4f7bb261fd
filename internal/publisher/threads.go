package publisher

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/crosspost-app/crosspost/internal/models"
	"github.com/crosspost-app/crosspost/internal/transfer"
)

const (
	threadsMaxCarouselImages = 10
	threadsPollInterval      = 5 * time.Second
)

// threadsPublisher follows the same container protocol as Instagram but
// without a poll cap: processing can take a while and the API gives no
// guidance, so the enclosing context deadline bounds the wait instead.
type threadsPublisher struct {
	deps
	pollInterval time.Duration
}

func newThreadsPublisher(d deps) *threadsPublisher {
	return &threadsPublisher{deps: d, pollInterval: threadsPollInterval}
}

func (p *threadsPublisher) Platform() string { return models.PlatformThreads }

func (p *threadsPublisher) Publish(ctx context.Context, req PublishRequest) error {
	return handleWith(ctx, p.errs, models.PlatformThreads, req, func() error {
		return p.publish(ctx, req)
	})
}

func (p *threadsPublisher) publish(ctx context.Context, req PublishRequest) error {
	acc, err := p.account(ctx, req)
	if err != nil {
		return err
	}

	assets, err := p.assets(ctx, req.PostID)
	if err != nil {
		return err
	}

	var containerID string
	switch {
	case len(assets) == 0:
		containerID, err = p.createContainer(ctx, acc.AccountID, transfer.ThreadsMediaRequest{
			MediaType:   "TEXT",
			Text:        req.Caption,
			ReplyToID:   req.Target.Options.ThreadsReplyToID,
			AccessToken: acc.AccessToken,
		})
	case len(assets) == 1:
		containerID, err = p.createSingle(ctx, acc, req, assets[0])
	default:
		containerID, err = p.createCarousel(ctx, acc, req, assets)
	}
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

func (p *threadsPublisher) createSingle(ctx context.Context, acc *models.Account, req PublishRequest, asset models.MediaAsset) (string, error) {
	container := transfer.ThreadsMediaRequest{
		Text:        req.Caption,
		ReplyToID:   req.Target.Options.ThreadsReplyToID,
		AccessToken: acc.AccessToken,
	}
	switch {
	case asset.IsImage():
		container.MediaType = "IMAGE"
		container.ImageURL = asset.URL
	case asset.IsVideo():
		container.MediaType = "VIDEO"
		container.VideoURL = asset.URL
	default:
		return "", newValidationError(models.PlatformThreads, "unsupported media type %q", asset.MimeType)
	}
	return p.createContainer(ctx, acc.AccountID, container)
}

// createCarousel builds one container per image, waits for all of them and
// then creates the parent. Any item failure aborts before the parent exists.
func (p *threadsPublisher) createCarousel(ctx context.Context, acc *models.Account, req PublishRequest, assets []models.MediaAsset) (string, error) {
	if len(assets) > threadsMaxCarouselImages {
		return "", newValidationError(models.PlatformThreads, "carousels are limited to %d items", threadsMaxCarouselImages)
	}
	if _, videos := models.CountMedia(assets); videos > 0 {
		return "", newValidationError(models.PlatformThreads, "carousels support images only")
	}

	itemIDs := make([]string, 0, len(assets))
	for _, asset := range assets {
		item := transfer.ThreadsMediaRequest{
			MediaType:      "IMAGE",
			ImageURL:       asset.URL,
			IsCarouselItem: true,
			AccessToken:    acc.AccessToken,
		}
		id, err := p.createContainer(ctx, acc.AccountID, item)
		if err != nil {
			return "", err
		}
		itemIDs = append(itemIDs, id)
	}

	err := pollAll(ctx, models.PlatformThreads, itemIDs, func(ctx context.Context, id string) (ContainerStatus, error) {
		return p.containerStatus(ctx, id, acc.AccessToken)
	}, pollOptions{Interval: p.pollInterval})
	if err != nil {
		return "", err
	}

	parent := transfer.ThreadsMediaRequest{
		MediaType:   "CAROUSEL",
		Text:        req.Caption,
		Children:    strings.Join(itemIDs, ","),
		ReplyToID:   req.Target.Options.ThreadsReplyToID,
		AccessToken: acc.AccessToken,
	}
	return p.createContainer(ctx, acc.AccountID, parent)
}

func (p *threadsPublisher) createContainer(ctx context.Context, accountID string, payload transfer.ThreadsMediaRequest) (string, error) {
	var result transfer.GraphIDResponse
	endpoint := fmt.Sprintf("%s/%s/threads", p.cfg.ThreadsAPIBaseURL, accountID)
	if err := p.postJSON(ctx, models.PlatformThreads, endpoint, nil, payload, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", &ProtocolError{Platform: models.PlatformThreads, Message: "no container id returned"}
	}
	return result.ID, nil
}

func (p *threadsPublisher) awaitContainer(ctx context.Context, containerID, token string) error {
	_, err := pollContainer(ctx, models.PlatformThreads, containerID, func(ctx context.Context) (ContainerStatus, error) {
		return p.containerStatus(ctx, containerID, token)
	}, pollOptions{Interval: p.pollInterval})
	return err
}

func (p *threadsPublisher) containerStatus(ctx context.Context, containerID, token string) (ContainerStatus, error) {
	endpoint := fmt.Sprintf("%s/%s?fields=status&access_token=%s",
		p.cfg.ThreadsAPIBaseURL, containerID, url.QueryEscape(token))

	var result transfer.GraphStatusResponse
	if err := p.getJSON(ctx, models.PlatformThreads, endpoint, nil, &result); err != nil {
		return "", err
	}
	return ContainerStatus(result.Status), nil
}

func (p *threadsPublisher) publishContainer(ctx context.Context, acc *models.Account, containerID string) error {
	payload := transfer.ThreadsPublishRequest{
		CreationID:  containerID,
		AccessToken: acc.AccessToken,
	}
	var result transfer.GraphIDResponse
	endpoint := fmt.Sprintf("%s/%s/threads_publish", p.cfg.ThreadsAPIBaseURL, acc.AccountID)
	if err := p.postJSON(ctx, models.PlatformThreads, endpoint, nil, payload, &result); err != nil {
		return err
	}
	if result.ID == "" {
		return &ProtocolError{Platform: models.PlatformThreads, Message: "no media id returned from threads_publish"}
	}
	p.log.Info("published to threads", "media_id", result.ID)
	return nil
}
