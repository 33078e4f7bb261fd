package transfer

// X API v2 tweet creation plus the v1.1 media upload endpoint.

type XMediaUploadResponse struct {
	MediaID       int64  `json:"media_id"`
	MediaIDString string `json:"media_id_string"`
	ExpiresAfter  int    `json:"expires_after_secs"`
}

type XTweetMedia struct {
	MediaIDs []string `json:"media_ids"`
}

type XTweetRequest struct {
	Text  string       `json:"text,omitempty"`
	Media *XTweetMedia `json:"media,omitempty"`
}

type XTweetData struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type XTweetResponse struct {
	Data XTweetData `json:"data"`
}
