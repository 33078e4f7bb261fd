package publisher

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	config "github.com/crosspost-app/crosspost/configs"
	"github.com/crosspost-app/crosspost/internal/media"
	"github.com/crosspost-app/crosspost/internal/models"
)

// fakeAccounts returns a fixed account bundle for every lookup.
type fakeAccounts struct {
	account     *models.Account
	reauthCalls []int64
}

func (f *fakeAccounts) GetByUserIDAndSocialAccountID(ctx context.Context, userID, socialAccountID int64) (*models.Account, error) {
	return f.account, nil
}

func (f *fakeAccounts) ListExpiring(ctx context.Context, within time.Duration) ([]*models.SocialAccount, error) {
	return nil, nil
}

func (f *fakeAccounts) SetToken(ctx context.Context, accountID int64, encryptedAccess, encryptedRefresh string, expiresAt time.Time) error {
	return nil
}

func (f *fakeAccounts) MarkNeedsReauth(ctx context.Context, accountID int64) error {
	f.reauthCalls = append(f.reauthCalls, accountID)
	return nil
}

type targetUpdate struct {
	Status        string
	FailureReason string
}

// fakePosts serves canned assets and records target status writes.
type fakePosts struct {
	mu      sync.Mutex
	post    *models.Post
	assets  []models.MediaAsset
	updates []targetUpdate
	history []*models.PostingHistory
	targets []*models.PostTarget
}

func (f *fakePosts) GetPostDetails(ctx context.Context, postID, userID int64) (*models.Post, error) {
	return f.post, nil
}

func (f *fakePosts) GetPostMediaAssets(ctx context.Context, postID int64) ([]models.MediaAsset, error) {
	return f.assets, nil
}

func (f *fakePosts) GetPostMediaAsset(ctx context.Context, postID int64) (*models.MediaAsset, error) {
	if len(f.assets) == 0 {
		return nil, nil
	}
	return &f.assets[0], nil
}

func (f *fakePosts) GetPostTargets(ctx context.Context, postID int64) ([]*models.PostTarget, error) {
	return f.targets, nil
}

func (f *fakePosts) UpdatePostTarget(ctx context.Context, userID, postID, socialAccountID int64, status, failureReason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, targetUpdate{Status: status, FailureReason: failureReason})
	return nil
}

func (f *fakePosts) CreatePostingHistory(ctx context.Context, h *models.PostingHistory) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, h)
	return int64(len(f.history)), nil
}

// fakeDownloader serves byte payloads by URL.
type fakeDownloader struct {
	files map[string]*media.File
}

func (f *fakeDownloader) Fetch(ctx context.Context, url string) (*media.File, error) {
	if file, ok := f.files[url]; ok {
		return file, nil
	}
	return &media.File{Data: []byte("payload"), ContentType: "application/octet-stream"}, nil
}

// fakeUploader hands out sequential URLs and records deletions.
type fakeUploader struct {
	mu       sync.Mutex
	uploads  []string
	deletes  []string
	baseURL  string
	uploadFn func(key string) error
}

func (f *fakeUploader) Upload(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.uploadFn != nil {
		if err := f.uploadFn(key); err != nil {
			return "", err
		}
	}
	url := f.baseURL + "/" + key
	f.uploads = append(f.uploads, url)
	return url, nil
}

func (f *fakeUploader) Delete(ctx context.Context, fileURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, fileURL)
	return nil
}

// passthroughImages accepts everything unchanged.
type passthroughImages struct{}

func (passthroughImages) ValidateForPlatform(buf []byte, platform string) error { return nil }
func (passthroughImages) ProcessForPlatform(ctx context.Context, buf []byte, platform string) ([]byte, error) {
	return buf, nil
}

// fixedVideos reports a fixed duration and passes bytes through.
type fixedVideos struct {
	duration time.Duration
}

func (fixedVideos) ProcessForPlatform(ctx context.Context, buf []byte, platform string) ([]byte, error) {
	return buf, nil
}

func (fixedVideos) ProcessWithCover(ctx context.Context, buf []byte, coverURL string) ([]byte, error) {
	return buf, nil
}

func (v fixedVideos) Duration(buf []byte) (time.Duration, error) {
	return v.duration, nil
}

// rethrowErrors passes the cause straight through, matching the default
// handler's contract without its side effects.
type rethrowErrors struct{}

func (rethrowErrors) HandlePublishError(ctx context.Context, cause error, platform string, userID, postID, socialAccountID int64) error {
	return cause
}

type fixture struct {
	accounts *fakeAccounts
	posts    *fakePosts
	uploads  *fakeUploader
	dl       *fakeDownloader
	deps     deps
}

func newFixture(cfg config.Config, account *models.Account, assets []models.MediaAsset) *fixture {
	f := &fixture{
		accounts: &fakeAccounts{account: account},
		posts:    &fakePosts{assets: assets},
		uploads:  &fakeUploader{baseURL: "https://cdn.example.com"},
		dl:       &fakeDownloader{files: map[string]*media.File{}},
	}
	f.deps = deps{
		cfg:      cfg,
		accounts: f.accounts,
		posts:    f.posts,
		dl:       f.dl,
		uploader: f.uploads,
		images:   passthroughImages{},
		videos:   fixedVideos{duration: 10 * time.Second},
		errs:     rethrowErrors{},
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return f
}

func testRequest(platform string) PublishRequest {
	return PublishRequest{
		Target: &models.PostTarget{
			PostID:          1,
			SocialAccountID: 7,
			Platform:        platform,
			Text:            "hello world",
		},
		UserID:  42,
		PostID:  1,
		Caption: "hello world",
		Post:    &models.Post{ID: 1, UserID: 42},
	}
}
