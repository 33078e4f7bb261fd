package publisher

import (
	"context"
	"encoding/json"
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

func xAccount() *models.Account {
	return &models.Account{ID: 7, UserID: 42, Platform: models.PlatformX, AccessToken: "x-token"}
}

func TestXRejectsTooManyMedia(t *testing.T) {
	assets := make([]models.MediaAsset, 5)
	for i := range assets {
		assets[i] = models.MediaAsset{URL: "https://media.example.com/i.jpg", MimeType: "image/jpeg"}
	}
	f := newFixture(config.Config{XCharLimit: 280}, xAccount(), assets)
	p := newXPublisher(f.deps)

	err := p.Publish(context.Background(), testRequest(models.PlatformX))
	assert.ErrorAs(t, err, new(*ValidationError))
}

func TestXRejectsMixedMedia(t *testing.T) {
	f := newFixture(config.Config{XCharLimit: 280}, xAccount(), []models.MediaAsset{
		{URL: "https://media.example.com/a.jpg", MimeType: "image/jpeg"},
		{URL: "https://media.example.com/v.mp4", MimeType: "video/mp4"},
	})
	p := newXPublisher(f.deps)

	err := p.Publish(context.Background(), testRequest(models.PlatformX))
	assert.ErrorAs(t, err, new(*ValidationError))
}

func TestXRejectsLongCaption(t *testing.T) {
	f := newFixture(config.Config{XCharLimit: 280}, xAccount(), nil)
	p := newXPublisher(f.deps)

	req := testRequest(models.PlatformX)
	req.Caption = strings.Repeat("y", 281)

	err := p.Publish(context.Background(), req)
	assert.ErrorAs(t, err, new(*ValidationError))
}

func TestXUploadsMediaThenTweets(t *testing.T) {
	var uploadCalls, tweetCalls atomic.Int64
	var tweetMediaIDs []string

	mux := http.NewServeMux()
	mux.HandleFunc("/1.1/media/upload.json", func(w http.ResponseWriter, r *http.Request) {
		uploadCalls.Add(1)
		assert.Equal(t, "Bearer x-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]string{"media_id_string": "media-1"})
	})
	mux.HandleFunc("/2/tweets", func(w http.ResponseWriter, r *http.Request) {
		tweetCalls.Add(1)
		var body struct {
			Text  string `json:"text"`
			Media *struct {
				MediaIDs []string `json:"media_ids"`
			} `json:"media"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Media != nil {
			tweetMediaIDs = body.Media.MediaIDs
		}
		json.NewEncoder(w).Encode(map[string]map[string]string{"data": {"id": "tweet-1", "text": body.Text}})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := config.Config{XAPIBaseURL: server.URL, XUploadBaseURL: server.URL, XCharLimit: 280}
	f := newFixture(cfg, xAccount(), []models.MediaAsset{
		{URL: "https://media.example.com/a.jpg", MimeType: "image/jpeg"},
	})
	p := newXPublisher(f.deps)

	err := p.Publish(context.Background(), testRequest(models.PlatformX))
	require.NoError(t, err)

	assert.EqualValues(t, 1, uploadCalls.Load())
	assert.EqualValues(t, 1, tweetCalls.Load())
	assert.Equal(t, []string{"media-1"}, tweetMediaIDs)
	require.Len(t, f.posts.updates, 1)
	assert.Equal(t, models.TargetStatusDone, f.posts.updates[0].Status)
}

func TestXTextOnlyTweetOmitsMedia(t *testing.T) {
	var sawMediaField bool
	mux := http.NewServeMux()
	mux.HandleFunc("/2/tweets", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]json.RawMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, sawMediaField = body["media"]
		json.NewEncoder(w).Encode(map[string]map[string]string{"data": {"id": "tweet-2"}})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := config.Config{XAPIBaseURL: server.URL, XUploadBaseURL: server.URL, XCharLimit: 280}
	f := newFixture(cfg, xAccount(), nil)
	p := newXPublisher(f.deps)

	err := p.Publish(context.Background(), testRequest(models.PlatformX))
	require.NoError(t, err)
	assert.False(t, sawMediaField, "text-only tweets must not carry a media object")
}
