package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	config "github.com/crosspost-app/crosspost/configs"
	"github.com/crosspost-app/crosspost/internal/media"
	"github.com/crosspost-app/crosspost/internal/models"
	"github.com/crosspost-app/crosspost/internal/repository"
)

// Deps is everything the factory needs to assemble the nine adapters.
type Deps struct {
	Config     config.Config
	Accounts   repository.AccountRepository
	Posts      repository.PostsRepository
	Downloader media.Downloader
	Uploader   media.Uploader
	Images     media.ImageProcessor
	Videos     media.VideoProcessor
	Errors     ErrorHandler
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Factory constructs every adapter once and dispatches publish attempts by
// platform through a strategy map. No retry logic lives here.
type Factory struct {
	publishers map[string]Publisher
}

func NewFactory(d Deps) *Factory {
	if d.HTTPClient == nil {
		d.HTTPClient = &http.Client{Timeout: 10 * time.Minute}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	shared := deps{
		cfg:      d.Config,
		accounts: d.Accounts,
		posts:    d.Posts,
		dl:       d.Downloader,
		uploader: d.Uploader,
		images:   d.Images,
		videos:   d.Videos,
		errs:     d.Errors,
		client:   d.HTTPClient,
		log:      d.Logger,
	}

	publishers := []Publisher{
		newBlueskyPublisher(shared),
		newFacebookPublisher(shared),
		newInstagramPublisher(shared),
		newLinkedInPublisher(shared),
		newPinterestPublisher(shared),
		newThreadsPublisher(shared),
		newTiktokPublisher(shared),
		newXPublisher(shared),
		newYoutubePublisher(shared),
	}

	byPlatform := make(map[string]Publisher, len(publishers))
	for _, p := range publishers {
		byPlatform[p.Platform()] = p
	}
	return &Factory{publishers: byPlatform}
}

// Create returns the singleton adapter for a platform.
func (f *Factory) Create(platform string) (Publisher, error) {
	p, ok := f.publishers[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, platform)
	}
	return p, nil
}

// Publish dispatches one attempt to the platform's adapter, first computing
// the tag-formatted caption the adapter will post.
func (f *Factory) Publish(ctx context.Context, platform string, req PublishRequest) error {
	p, err := f.Create(platform)
	if err != nil {
		return err
	}
	if req.Caption == "" {
		req.Caption = FormatCaptionWithTags(req.Target.Text, req.Target.Tags, platform)
	}
	return p.Publish(ctx, req)
}

// Platforms lists every known platform identifier.
func (f *Factory) Platforms() []string {
	names := make([]string, 0, len(f.publishers))
	for _, name := range []string{
		models.PlatformBluesky, models.PlatformFacebook, models.PlatformInstagram,
		models.PlatformLinkedIn, models.PlatformPinterest, models.PlatformThreads,
		models.PlatformTiktok, models.PlatformX, models.PlatformYoutube,
	} {
		if _, ok := f.publishers[name]; ok {
			names = append(names, name)
		}
	}
	return names
}
