package publisher

import (
	"context"

	"github.com/crosspost-app/crosspost/internal/models"
	"github.com/crosspost-app/crosspost/internal/transfer"
)

const linkedinMaxImages = 9

// linkedinPublisher uses the two-phase v2 UGC upload: registerUpload returns
// an upload URL plus an asset URN, the binary goes to the URL, and the URN is
// what the ugcPosts payload references.
type linkedinPublisher struct {
	deps
}

func newLinkedInPublisher(d deps) *linkedinPublisher {
	return &linkedinPublisher{deps: d}
}

func (p *linkedinPublisher) Platform() string { return models.PlatformLinkedIn }

func (p *linkedinPublisher) Publish(ctx context.Context, req PublishRequest) error {
	return handleWith(ctx, p.errs, models.PlatformLinkedIn, req, func() error {
		return p.publish(ctx, req)
	})
}

func (p *linkedinPublisher) publish(ctx context.Context, req PublishRequest) error {
	acc, err := p.account(ctx, req)
	if err != nil {
		return err
	}

	assets, err := p.assets(ctx, req.PostID)
	if err != nil {
		return err
	}

	images, videos := models.CountMedia(assets)
	if len(assets) > 1 && videos > 0 {
		return newValidationError(models.PlatformLinkedIn, "multi-media posts support images only")
	}
	if images > linkedinMaxImages {
		return newValidationError(models.PlatformLinkedIn, "posts are limited to %d images", linkedinMaxImages)
	}

	author := "urn:li:person:" + acc.AccountID

	category := "NONE"
	var mediaRefs []transfer.LinkedInMedia
	if len(assets) > 0 {
		category = "IMAGE"
		recipe := transfer.LinkedInImageRecipe
		if videos == 1 {
			category = "VIDEO"
			recipe = transfer.LinkedInVideoRecipe
		}
		for _, asset := range assets {
			urn, err := p.uploadAsset(ctx, acc.AccessToken, author, recipe, asset)
			if err != nil {
				return err
			}
			mediaRefs = append(mediaRefs, transfer.LinkedInMedia{Status: "READY", Media: urn})
		}
	}

	post := transfer.LinkedInUGCPostRequest{
		Author:         author,
		LifecycleState: "PUBLISHED",
		SpecificContent: transfer.LinkedInSpecificContent{
			ShareContent: transfer.LinkedInShareContent{
				ShareCommentary:    transfer.LinkedInText{Text: req.Caption},
				ShareMediaCategory: category,
				Media:              mediaRefs,
			},
		},
		Visibility: transfer.LinkedInVisibility{MemberNetworkVisibility: "PUBLIC"},
	}

	headers := bearer(acc.AccessToken)
	headers["X-Restli-Protocol-Version"] = "2.0.0"

	var created transfer.LinkedInUGCPostResponse
	if err := p.postJSON(ctx, models.PlatformLinkedIn, p.cfg.LinkedInAPIBaseURL+"/ugcPosts", headers, post, &created); err != nil {
		return err
	}

	p.log.Info("published to linkedin", "ugc_post_id", created.ID, "post_id", req.PostID)
	return p.markDone(ctx, req)
}

// uploadAsset registers an upload, PUTs the binary to the returned URL and
// hands back the content-asset URN.
func (p *linkedinPublisher) uploadAsset(ctx context.Context, token, owner, recipe string, asset models.MediaAsset) (string, error) {
	register := transfer.LinkedInRegisterUploadRequest{
		RegisterUploadRequest: transfer.LinkedInRegisterUpload{
			Recipes: []string{recipe},
			Owner:   owner,
			ServiceRelationships: []transfer.LinkedInServiceRelationship{
				{RelationshipType: "OWNER", Identifier: "urn:li:userGeneratedContent"},
			},
		},
	}

	var registered transfer.LinkedInRegisterUploadResponse
	endpoint := p.cfg.LinkedInAPIBaseURL + "/assets?action=registerUpload"
	if err := p.postJSON(ctx, models.PlatformLinkedIn, endpoint, bearer(token), register, &registered); err != nil {
		return "", &UploadError{Platform: models.PlatformLinkedIn, Stage: "registerUpload", Err: err}
	}

	uploadURL := registered.Value.UploadMechanism.MediaUploadHTTPRequest.UploadURL
	if uploadURL == "" || registered.Value.Asset == "" {
		return "", &ProtocolError{Platform: models.PlatformLinkedIn, Message: "registerUpload returned no upload url or asset"}
	}

	file, err := p.dl.Fetch(ctx, asset.URL)
	if err != nil {
		return "", err
	}
	if err := p.putRegistered(ctx, models.PlatformLinkedIn, uploadURL, file.Data, file.ContentType, bearer(token)); err != nil {
		return "", err
	}

	return registered.Value.Asset, nil
}
