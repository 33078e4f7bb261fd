package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	config "github.com/crosspost-app/crosspost/configs"
	"github.com/crosspost-app/crosspost/internal/media"
	"github.com/crosspost-app/crosspost/internal/models"
	"github.com/crosspost-app/crosspost/internal/repository"
)

// PublishRequest is one publish attempt of one post target. Caption is the
// tag-formatted text the factory computes before dispatch; Post carries the
// cover image and timestamp for the platforms that use them.
type PublishRequest struct {
	Target  *models.PostTarget
	UserID  int64
	PostID  int64
	Caption string
	Post    *models.Post
}

// Publisher sends one post to one platform. Implementations are stateless
// apart from injected collaborators and safe to share across attempts.
type Publisher interface {
	Platform() string
	Publish(ctx context.Context, req PublishRequest) error
}

// ErrorHandler is invoked with every publish failure before it propagates.
// It may log, reclassify or flag the account, and always returns a non-nil
// error for the caller to rethrow.
type ErrorHandler interface {
	HandlePublishError(ctx context.Context, cause error, platform string, userID, postID, socialAccountID int64) error
}

// deps is the collaborator bundle shared by every adapter. It carries no
// behavior of its own beyond small fetch helpers.
type deps struct {
	cfg      config.Config
	accounts repository.AccountRepository
	posts    repository.PostsRepository
	dl       media.Downloader
	uploader media.Uploader
	images   media.ImageProcessor
	videos   media.VideoProcessor
	errs     ErrorHandler
	client   *http.Client
	log      *slog.Logger
}

func (d deps) account(ctx context.Context, req PublishRequest) (*models.Account, error) {
	acc, err := d.accounts.GetByUserIDAndSocialAccountID(ctx, req.UserID, req.Target.SocialAccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve account %d: %w", req.Target.SocialAccountID, err)
	}
	return acc, nil
}

func (d deps) assets(ctx context.Context, postID int64) ([]models.MediaAsset, error) {
	assets, err := d.posts.GetPostMediaAssets(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch media assets for post %d: %w", postID, err)
	}
	return assets, nil
}

func (d deps) markDone(ctx context.Context, req PublishRequest) error {
	err := d.posts.UpdatePostTarget(ctx, req.UserID, req.PostID, req.Target.SocialAccountID, models.TargetStatusDone, "")
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return nil
}

// handleWith runs an adapter body and routes any failure through the error
// handler, rethrowing whatever it returns.
func handleWith(ctx context.Context, errs ErrorHandler, platform string, req PublishRequest, fn func() error) error {
	if err := fn(); err != nil {
		return errs.HandlePublishError(ctx, err, platform, req.UserID, req.PostID, req.Target.SocialAccountID)
	}
	return nil
}
