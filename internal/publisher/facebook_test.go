package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/crosspost-app/crosspost/configs"
	"github.com/crosspost-app/crosspost/internal/models"
)

func facebookAccount() *models.Account {
	return &models.Account{
		ID: 7, UserID: 42, Platform: models.PlatformFacebook,
		AccountID: "fb-user", PageID: "page-1", AccessToken: "fb-token",
	}
}

func newFacebookServer(t *testing.T) (*httptest.Server, *atomic.Int64, *atomic.Int64) {
	var photoCalls, feedCalls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/photos"):
			photoCalls.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"id": "photo-1"})
		case strings.HasSuffix(r.URL.Path, "/feed"):
			feedCalls.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"id": "feed-1"})
		case strings.HasSuffix(r.URL.Path, "/videos"):
			json.NewEncoder(w).Encode(map[string]string{"id": "video-1"})
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	}))
	t.Cleanup(server.Close)
	return server, &photoCalls, &feedCalls
}

func TestFacebookRejectsMissingPageID(t *testing.T) {
	acc := facebookAccount()
	acc.PageID = ""
	f := newFixture(config.Config{}, acc, nil)
	p := newFacebookPublisher(f.deps)

	err := p.Publish(context.Background(), testRequest(models.PlatformFacebook))
	assert.ErrorAs(t, err, new(*ValidationError))
}

func TestFacebookRejectsVideoInMultiMediaPost(t *testing.T) {
	f := newFixture(config.Config{}, facebookAccount(), []models.MediaAsset{
		{URL: "https://media.example.com/a.jpg", MimeType: "image/jpeg"},
		{URL: "https://media.example.com/v.mp4", MimeType: "video/mp4"},
	})
	p := newFacebookPublisher(f.deps)

	err := p.Publish(context.Background(), testRequest(models.PlatformFacebook))
	assert.ErrorAs(t, err, new(*ValidationError))
}

func TestFacebookTextOnlyPostsToFeed(t *testing.T) {
	server, photoCalls, feedCalls := newFacebookServer(t)

	f := newFixture(config.Config{GraphAPIBaseURL: server.URL}, facebookAccount(), nil)
	p := newFacebookPublisher(f.deps)

	err := p.Publish(context.Background(), testRequest(models.PlatformFacebook))
	require.NoError(t, err)
	assert.Zero(t, photoCalls.Load())
	assert.EqualValues(t, 1, feedCalls.Load())
	require.Len(t, f.posts.updates, 1)
	assert.Equal(t, models.TargetStatusDone, f.posts.updates[0].Status)
}

func TestFacebookMultiPhotoAttachesAndCleansUp(t *testing.T) {
	server, photoCalls, feedCalls := newFacebookServer(t)

	f := newFixture(config.Config{GraphAPIBaseURL: server.URL}, facebookAccount(), []models.MediaAsset{
		{URL: "https://media.example.com/a.jpg", MimeType: "image/jpeg"},
		{URL: "https://media.example.com/b.jpg", MimeType: "image/jpeg"},
		{URL: "https://media.example.com/c.jpg", MimeType: "image/jpeg"},
	})
	p := newFacebookPublisher(f.deps)

	err := p.Publish(context.Background(), testRequest(models.PlatformFacebook))
	require.NoError(t, err)

	assert.EqualValues(t, 3, photoCalls.Load())
	assert.EqualValues(t, 1, feedCalls.Load())
	// One temp upload per image, all deleted after the attempt.
	assert.Len(t, f.uploads.uploads, 3)
	assert.ElementsMatch(t, f.uploads.uploads, f.uploads.deletes)
}

func TestFacebookFailedUploadDeletesEarlierTempAssets(t *testing.T) {
	server, photoCalls, feedCalls := newFacebookServer(t)

	f := newFixture(config.Config{GraphAPIBaseURL: server.URL}, facebookAccount(), []models.MediaAsset{
		{URL: "https://media.example.com/a.jpg", MimeType: "image/jpeg"},
		{URL: "https://media.example.com/b.jpg", MimeType: "image/jpeg"},
		{URL: "https://media.example.com/c.jpg", MimeType: "image/jpeg"},
	})
	var uploadCalls atomic.Int64
	f.uploads.uploadFn = func(string) error {
		if uploadCalls.Add(1) == 3 {
			return errors.New("storage unavailable")
		}
		return nil
	}
	p := newFacebookPublisher(f.deps)

	err := p.Publish(context.Background(), testRequest(models.PlatformFacebook))
	require.ErrorContains(t, err, "storage unavailable")

	assert.Zero(t, feedCalls.Load())
	assert.EqualValues(t, 2, photoCalls.Load())
	// The two uploads that made it to storage are each deleted exactly once.
	require.Len(t, f.uploads.uploads, 2)
	assert.ElementsMatch(t, f.uploads.uploads, f.uploads.deletes)
}

func TestFacebookTargetPageOverridesAccountPage(t *testing.T) {
	var requestedPage string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestedPage = strings.Split(strings.TrimPrefix(r.URL.Path, "/"), "/")[0]
		json.NewEncoder(w).Encode(map[string]string{"id": "feed-1"})
	}))
	defer server.Close()

	f := newFixture(config.Config{GraphAPIBaseURL: server.URL}, facebookAccount(), nil)
	p := newFacebookPublisher(f.deps)

	req := testRequest(models.PlatformFacebook)
	req.Target.Options.FacebookPageID = "page-override"

	err := p.Publish(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "page-override", requestedPage)
}
