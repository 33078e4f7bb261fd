package publisher

import (
	"context"
	"time"

	"github.com/crosspost-app/crosspost/internal/models"
	"github.com/crosspost-app/crosspost/internal/transfer"
)

const (
	tiktokMaxSlideshowImages = 35
	tiktokMinVideoDuration   = 3 * time.Second
	tiktokPollInterval       = 5 * time.Second
)

// tiktokPublisher uses the Content Posting API v2. Videos go through the
// FILE_UPLOAD init/chunk/status sequence; photo slideshows are pulled from
// temporary storage URLs. Unlike the container platforms a FAILED status is a
// post-upload verdict, so the target row is marked failed here rather than by
// the queue worker.
type tiktokPublisher struct {
	deps
	pollInterval time.Duration
}

func newTiktokPublisher(d deps) *tiktokPublisher {
	return &tiktokPublisher{deps: d, pollInterval: tiktokPollInterval}
}

func (p *tiktokPublisher) Platform() string { return models.PlatformTiktok }

func (p *tiktokPublisher) Publish(ctx context.Context, req PublishRequest) error {
	return handleWith(ctx, p.errs, models.PlatformTiktok, req, func() error {
		return p.publish(ctx, req)
	})
}

func (p *tiktokPublisher) publish(ctx context.Context, req PublishRequest) error {
	acc, err := p.account(ctx, req)
	if err != nil {
		return err
	}

	assets, err := p.assets(ctx, req.PostID)
	if err != nil {
		return err
	}
	if len(assets) == 0 {
		return newValidationError(models.PlatformTiktok, "post has no media")
	}

	images, videos := models.CountMedia(assets)
	if images > 0 && videos > 0 {
		return newValidationError(models.PlatformTiktok, "mixed video and image posts are not supported")
	}
	if videos > 1 {
		return newValidationError(models.PlatformTiktok, "at most one video per post")
	}
	if videos == 0 && len(assets) > tiktokMaxSlideshowImages {
		return newValidationError(models.PlatformTiktok, "slideshows are limited to %d images", tiktokMaxSlideshowImages)
	}

	creator, err := p.creatorInfo(ctx, acc.AccessToken)
	if err != nil {
		return err
	}
	privacy := resolvePrivacyLevel(req.Target.Options.TiktokPrivacyLevel, creator.PrivacyLevelOptions)

	if videos == 1 {
		return p.publishVideo(ctx, acc, req, assets[0], creator, privacy)
	}
	return p.publishPhotos(ctx, acc, req, assets, privacy)
}

// resolvePrivacyLevel keeps the requested level when the creator may use it,
// otherwise falls back to SELF_ONLY or, failing that, the first allowed
// option.
func resolvePrivacyLevel(requested string, allowed []string) string {
	for _, level := range allowed {
		if level == requested && requested != "" {
			return requested
		}
	}
	for _, level := range allowed {
		if level == "SELF_ONLY" {
			return level
		}
	}
	if len(allowed) > 0 {
		return allowed[0]
	}
	return "SELF_ONLY"
}

func (p *tiktokPublisher) publishVideo(ctx context.Context, acc *models.Account, req PublishRequest, asset models.MediaAsset, creator *transfer.TiktokCreatorInfo, privacy string) error {
	file, err := p.dl.Fetch(ctx, asset.URL)
	if err != nil {
		return err
	}

	duration, err := p.videos.Duration(file.Data)
	if err != nil {
		return err
	}
	if duration < tiktokMinVideoDuration {
		return newValidationError(models.PlatformTiktok, "videos must be at least %s long", tiktokMinVideoDuration)
	}
	if max := time.Duration(creator.MaxVideoPostDurationSec) * time.Second; max > 0 && duration > max {
		return newValidationError(models.PlatformTiktok, "video exceeds the account's %s duration limit", max)
	}

	postInfo := transfer.TiktokVideoPostInfo{
		Title:        req.Caption,
		PrivacyLevel: privacy,
	}

	if req.Post != nil && req.Post.CoverURL != "" {
		return p.publishVideoFromURL(ctx, acc, req, file.Data, file.ContentType, postInfo)
	}

	init := transfer.TiktokVideoInitRequest{
		PostInfo: postInfo,
		SourceInfo: transfer.TiktokVideoSourceInfo{
			Source:          "FILE_UPLOAD",
			VideoSize:       int64(len(file.Data)),
			ChunkSize:       int64(len(file.Data)),
			TotalChunkCount: 1,
		},
	}
	data, err := p.initPost(ctx, acc.AccessToken, p.cfg.TiktokAPIBaseURL+"/post/publish/video/init/", init)
	if err != nil {
		return err
	}
	if data.UploadURL == "" {
		return &ProtocolError{Platform: models.PlatformTiktok, Message: "init returned no upload url"}
	}
	if err := p.putDeclaredChunk(ctx, models.PlatformTiktok, data.UploadURL, file.Data, file.ContentType); err != nil {
		return err
	}
	if err := p.awaitPublish(ctx, acc.AccessToken, req, data.PublishID); err != nil {
		return err
	}
	return p.markDone(ctx, req)
}

// publishVideoFromURL burns the cover frame in and stages the result in
// temporary storage so the platform can pull it.
func (p *tiktokPublisher) publishVideoFromURL(ctx context.Context, acc *models.Account, req PublishRequest, data []byte, contentType string, postInfo transfer.TiktokVideoPostInfo) error {
	temp := newTempAssets(p.uploader, p.log)
	defer temp.cleanup(ctx)

	processed, err := p.videos.ProcessWithCover(ctx, data, req.Post.CoverURL)
	if err != nil {
		return err
	}
	tempURL, err := p.uploader.Upload(ctx, tempVideoKey(contentType), processed, contentType)
	if err != nil {
		return err
	}
	temp.track(tempURL)

	init := transfer.TiktokVideoInitRequest{
		PostInfo: postInfo,
		SourceInfo: transfer.TiktokVideoSourceInfo{
			Source:   "PULL_FROM_URL",
			VideoURL: tempURL,
		},
	}
	initData, err := p.initPost(ctx, acc.AccessToken, p.cfg.TiktokAPIBaseURL+"/post/publish/video/init/", init)
	if err != nil {
		return err
	}
	if err := p.awaitPublish(ctx, acc.AccessToken, req, initData.PublishID); err != nil {
		return err
	}
	return p.markDone(ctx, req)
}

func (p *tiktokPublisher) publishPhotos(ctx context.Context, acc *models.Account, req PublishRequest, assets []models.MediaAsset, privacy string) error {
	temp := newTempAssets(p.uploader, p.log)
	defer temp.cleanup(ctx)

	urls := make([]string, 0, len(assets))
	for _, asset := range assets {
		file, err := p.dl.Fetch(ctx, asset.URL)
		if err != nil {
			return err
		}
		processed, err := p.images.ProcessForPlatform(ctx, file.Data, models.PlatformTiktok)
		if err != nil {
			return err
		}
		tempURL, err := p.uploader.Upload(ctx, tempImageKey(file.ContentType), processed, file.ContentType)
		if err != nil {
			return err
		}
		temp.track(tempURL)
		urls = append(urls, tempURL)
	}

	init := transfer.TiktokPhotoInitRequest{
		PostInfo: transfer.TiktokPhotoPostInfo{
			Title:        req.Target.Title,
			Description:  req.Caption,
			PrivacyLevel: privacy,
		},
		SourceInfo: transfer.TiktokPhotoSourceInfo{
			Source:      "PULL_FROM_URL",
			PhotoImages: urls,
		},
		PostMode:  "DIRECT_POST",
		MediaType: "PHOTO",
	}
	data, err := p.initPost(ctx, acc.AccessToken, p.cfg.TiktokAPIBaseURL+"/post/publish/content/init/", init)
	if err != nil {
		return err
	}
	if err := p.awaitPublish(ctx, acc.AccessToken, req, data.PublishID); err != nil {
		return err
	}
	return p.markDone(ctx, req)
}

func (p *tiktokPublisher) creatorInfo(ctx context.Context, token string) (*transfer.TiktokCreatorInfo, error) {
	var result transfer.TiktokCreatorInfoResponse
	endpoint := p.cfg.TiktokAPIBaseURL + "/post/publish/creator_info/query/"
	if err := p.postJSON(ctx, models.PlatformTiktok, endpoint, bearer(token), struct{}{}, &result); err != nil {
		return nil, err
	}
	if !result.Error.OK() {
		return nil, &ProtocolError{Platform: models.PlatformTiktok, Message: "creator_info: " + result.Error.Message}
	}
	return &result.Data, nil
}

func (p *tiktokPublisher) initPost(ctx context.Context, token, endpoint string, payload any) (*transfer.TiktokInitData, error) {
	var result transfer.TiktokInitResponse
	if err := p.postJSON(ctx, models.PlatformTiktok, endpoint, bearer(token), payload, &result); err != nil {
		return nil, err
	}
	if !result.Error.OK() {
		return nil, &ProtocolError{Platform: models.PlatformTiktok, Message: "init: " + result.Error.Message}
	}
	if result.Data.PublishID == "" {
		return nil, &ProtocolError{Platform: models.PlatformTiktok, Message: "init returned no publish id"}
	}
	return &result.Data, nil
}

// awaitPublish polls status/fetch until the platform reports a verdict. A
// FAILED verdict marks the target row failed with the platform's reason
// before surfacing the error.
func (p *tiktokPublisher) awaitPublish(ctx context.Context, token string, req PublishRequest, publishID string) error {
	for {
		status, err := p.fetchStatus(ctx, token, publishID)
		if err != nil {
			return err
		}
		switch status.Status {
		case "PUBLISH_COMPLETE":
			p.log.Info("published to tiktok", "publish_id", publishID)
			return nil
		case "FAILED":
			updateErr := p.posts.UpdatePostTarget(ctx, req.UserID, req.PostID, req.Target.SocialAccountID,
				models.TargetStatusFailed, status.FailReason)
			if updateErr != nil {
				p.log.Error("failed to record tiktok failure", "error", updateErr)
			}
			return &RemoteStatusError{Platform: models.PlatformTiktok, Reason: status.FailReason}
		case "PROCESSING_UPLOAD", "PROCESSING_DOWNLOAD", "SEND_TO_USER_INBOX":
		default:
			return &ProtocolError{Platform: models.PlatformTiktok, Message: "unknown publish status " + status.Status}
		}

		timer := time.NewTimer(p.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (p *tiktokPublisher) fetchStatus(ctx context.Context, token, publishID string) (*transfer.TiktokStatusData, error) {
	var result transfer.TiktokStatusFetchResponse
	endpoint := p.cfg.TiktokAPIBaseURL + "/post/publish/status/fetch/"
	payload := transfer.TiktokStatusFetchRequest{PublishID: publishID}
	if err := p.postJSON(ctx, models.PlatformTiktok, endpoint, bearer(token), payload, &result); err != nil {
		return nil, err
	}
	if !result.Error.OK() {
		return nil, &ProtocolError{Platform: models.PlatformTiktok, Message: "status/fetch: " + result.Error.Message}
	}
	return &result.Data, nil
}
