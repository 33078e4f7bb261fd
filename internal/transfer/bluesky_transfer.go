package transfer

import "encoding/json"

// AT Protocol XRPC shapes for Bluesky.

type BlueskyCreateSessionRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type BlueskyCreateSessionResponse struct {
	DID        string `json:"did"`
	Handle     string `json:"handle"`
	AccessJwt  string `json:"accessJwt"`
	RefreshJwt string `json:"refreshJwt"`
}

// BlueskyUploadBlobResponse keeps the blob ref opaque; it is embedded
// verbatim into the post record.
type BlueskyUploadBlobResponse struct {
	Blob json.RawMessage `json:"blob"`
}

type BlueskyImage struct {
	Alt   string          `json:"alt"`
	Image json.RawMessage `json:"image"`
}

type BlueskyImagesEmbed struct {
	Type   string         `json:"$type"` // app.bsky.embed.images
	Images []BlueskyImage `json:"images"`
}

type BlueskyPostRecord struct {
	Type      string              `json:"$type"` // app.bsky.feed.post
	Text      string              `json:"text"`
	CreatedAt string              `json:"createdAt"`
	Langs     []string            `json:"langs,omitempty"`
	Embed     *BlueskyImagesEmbed `json:"embed,omitempty"`
}

type BlueskyCreateRecordRequest struct {
	Repo       string            `json:"repo"`
	Collection string            `json:"collection"`
	Record     BlueskyPostRecord `json:"record"`
}

type BlueskyCreateRecordResponse struct {
	URI string `json:"uri"`
	CID string `json:"cid"`
}
