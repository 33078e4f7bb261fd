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

func blueskyAccount() *models.Account {
	return &models.Account{
		ID:          7,
		UserID:      42,
		Platform:    models.PlatformBluesky,
		AccountID:   "user.bsky.social",
		AccessToken: "app-password",
	}
}

func TestBlueskyRejectsLongCaptionWithoutNetwork(t *testing.T) {
	var hits atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := config.Config{BlueskyBaseURL: server.URL, BlueskyCharLimit: 300}
	f := newFixture(cfg, blueskyAccount(), nil)
	p := newBlueskyPublisher(f.deps)

	req := testRequest(models.PlatformBluesky)
	req.Caption = strings.Repeat("x", 310)

	err := p.Publish(context.Background(), req)

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Message, "300")
	assert.Zero(t, hits.Load(), "no request may be sent for an invalid post")
	assert.Empty(t, f.posts.updates)
}

func TestBlueskyRejectsVideo(t *testing.T) {
	cfg := config.Config{BlueskyCharLimit: 300}
	f := newFixture(cfg, blueskyAccount(), []models.MediaAsset{
		{URL: "https://media.example.com/v.mp4", MimeType: "video/mp4"},
	})
	p := newBlueskyPublisher(f.deps)

	err := p.Publish(context.Background(), testRequest(models.PlatformBluesky))
	assert.ErrorAs(t, err, new(*ValidationError))
}

func TestBlueskyRejectsTooManyImages(t *testing.T) {
	assets := make([]models.MediaAsset, 5)
	for i := range assets {
		assets[i] = models.MediaAsset{URL: "https://media.example.com/i.jpg", MimeType: "image/jpeg"}
	}
	f := newFixture(config.Config{BlueskyCharLimit: 300}, blueskyAccount(), assets)
	p := newBlueskyPublisher(f.deps)

	err := p.Publish(context.Background(), testRequest(models.PlatformBluesky))
	assert.ErrorAs(t, err, new(*ValidationError))
}

func TestBlueskyPublishesTextPost(t *testing.T) {
	var recordText string
	mux := http.NewServeMux()
	mux.HandleFunc("/com.atproto.server.createSession", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user.bsky.social", body["identifier"])
		json.NewEncoder(w).Encode(map[string]string{
			"did": "did:plc:abc", "handle": "user.bsky.social", "accessJwt": "jwt-token",
		})
	})
	mux.HandleFunc("/com.atproto.repo.createRecord", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer jwt-token", r.Header.Get("Authorization"))
		var body struct {
			Record struct {
				Text string `json:"text"`
			} `json:"record"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		recordText = body.Record.Text
		json.NewEncoder(w).Encode(map[string]string{"uri": "at://did:plc:abc/app.bsky.feed.post/1", "cid": "cid1"})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	cfg := config.Config{BlueskyBaseURL: server.URL, BlueskyCharLimit: 300}
	f := newFixture(cfg, blueskyAccount(), nil)
	p := newBlueskyPublisher(f.deps)

	err := p.Publish(context.Background(), testRequest(models.PlatformBluesky))
	require.NoError(t, err)
	assert.Equal(t, "hello world", recordText)
	require.Len(t, f.posts.updates, 1)
	assert.Equal(t, models.TargetStatusDone, f.posts.updates[0].Status)
}
