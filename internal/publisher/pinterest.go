package publisher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/crosspost-app/crosspost/internal/models"
	"github.com/crosspost-app/crosspost/internal/transfer"
)

const pinterestPollInterval = 5 * time.Second

// pinterestPublisher creates pins through the v5 API. Images go straight into
// the pin; videos are registered as media, uploaded to the returned form
// endpoint and polled until processing succeeds.
type pinterestPublisher struct {
	deps
	pollInterval time.Duration
}

func newPinterestPublisher(d deps) *pinterestPublisher {
	return &pinterestPublisher{deps: d, pollInterval: pinterestPollInterval}
}

func (p *pinterestPublisher) Platform() string { return models.PlatformPinterest }

func (p *pinterestPublisher) Publish(ctx context.Context, req PublishRequest) error {
	return handleWith(ctx, p.errs, models.PlatformPinterest, req, func() error {
		return p.publish(ctx, req)
	})
}

func (p *pinterestPublisher) publish(ctx context.Context, req PublishRequest) error {
	acc, err := p.account(ctx, req)
	if err != nil {
		return err
	}

	if req.Target.Options.PinterestBoardID == "" {
		return newValidationError(models.PlatformPinterest, "a board id is required")
	}

	assets, err := p.assets(ctx, req.PostID)
	if err != nil {
		return err
	}
	if len(assets) != 1 {
		return newValidationError(models.PlatformPinterest, "pins require exactly one media asset, got %d", len(assets))
	}

	asset := assets[0]
	var source transfer.PinterestMediaSource
	switch {
	case asset.IsImage():
		source = transfer.PinterestMediaSource{SourceType: "image_url", URL: asset.URL}
	case asset.IsVideo():
		mediaID, err := p.uploadVideo(ctx, acc.AccessToken, asset)
		if err != nil {
			return err
		}
		source = transfer.PinterestMediaSource{SourceType: "video_id", MediaID: mediaID}
		if req.Post != nil && req.Post.CoverURL != "" {
			source.CoverImageURL = req.Post.CoverURL
		}
	default:
		return newValidationError(models.PlatformPinterest, "unsupported media type %q", asset.MimeType)
	}

	link := ""
	if len(req.Target.LinkURLs) > 0 {
		link = req.Target.LinkURLs[0]
	}

	pin := transfer.PinterestPinRequest{
		BoardID:     req.Target.Options.PinterestBoardID,
		Title:       req.Target.Title,
		Description: req.Caption,
		Link:        link,
		MediaSource: source,
	}

	var created transfer.PinterestPinResponse
	if err := p.postJSON(ctx, models.PlatformPinterest, p.cfg.PinterestAPIBaseURL+"/pins", bearer(acc.AccessToken), pin, &created); err != nil {
		return err
	}

	p.log.Info("published to pinterest", "pin_id", created.ID, "post_id", req.PostID)
	return p.markDone(ctx, req)
}

// uploadVideo registers a media upload, posts the bytes to the returned form
// endpoint and waits for processing to finish.
func (p *pinterestPublisher) uploadVideo(ctx context.Context, token string, asset models.MediaAsset) (string, error) {
	var registered transfer.PinterestMediaRegisterResponse
	err := p.postJSON(ctx, models.PlatformPinterest, p.cfg.PinterestAPIBaseURL+"/media",
		bearer(token), transfer.PinterestMediaRegisterRequest{MediaType: "video"}, &registered)
	if err != nil {
		return "", &UploadError{Platform: models.PlatformPinterest, Stage: "media register", Err: err}
	}
	if registered.UploadURL == "" || registered.MediaID == "" {
		return "", &ProtocolError{Platform: models.PlatformPinterest, Message: "media register returned no upload url or media id"}
	}

	file, err := p.dl.Fetch(ctx, asset.URL)
	if err != nil {
		return "", err
	}
	if err := p.postUploadForm(ctx, registered.UploadURL, registered.UploadParameters, file.Data); err != nil {
		return "", err
	}

	_, err = pollContainer(ctx, models.PlatformPinterest, registered.MediaID, func(ctx context.Context) (ContainerStatus, error) {
		return p.mediaStatus(ctx, token, registered.MediaID)
	}, pollOptions{Interval: p.pollInterval})
	if err != nil {
		return "", err
	}
	return registered.MediaID, nil
}

func (p *pinterestPublisher) mediaStatus(ctx context.Context, token, mediaID string) (ContainerStatus, error) {
	var status transfer.PinterestMediaStatusResponse
	endpoint := fmt.Sprintf("%s/media/%s", p.cfg.PinterestAPIBaseURL, mediaID)
	if err := p.getJSON(ctx, models.PlatformPinterest, endpoint, bearer(token), &status); err != nil {
		return "", err
	}
	switch status.Status {
	case "succeeded":
		return StatusFinished, nil
	case "failed":
		return StatusError, nil
	case "registered", "processing":
		return StatusInProgress, nil
	default:
		return ContainerStatus(status.Status), nil
	}
}

// postUploadForm submits the registered upload's multipart form. The
// platform-issued parameters must precede the file part.
func (p *pinterestPublisher) postUploadForm(ctx context.Context, uploadURL string, params map[string]string, data []byte) error {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	for k, v := range params {
		if err := form.WriteField(k, v); err != nil {
			return &UploadError{Platform: models.PlatformPinterest, Stage: "form build", Err: err}
		}
	}
	part, err := form.CreateFormFile("file", "video")
	if err != nil {
		return &UploadError{Platform: models.PlatformPinterest, Stage: "form build", Err: err}
	}
	if _, err := part.Write(data); err != nil {
		return &UploadError{Platform: models.PlatformPinterest, Stage: "form build", Err: err}
	}
	if err := form.Close(); err != nil {
		return &UploadError{Platform: models.PlatformPinterest, Stage: "form build", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return &UploadError{Platform: models.PlatformPinterest, Stage: "form post", Err: err}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return &UploadError{Platform: models.PlatformPinterest, Stage: "form post", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &UploadError{
			Platform: models.PlatformPinterest,
			Stage:    "form post",
			Err:      &APIError{Platform: models.PlatformPinterest, StatusCode: resp.StatusCode, Body: truncateBody(body)},
		}
	}
	return nil
}
