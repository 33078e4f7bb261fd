package transfer

// Request and response shapes for the Facebook, Instagram and Threads Graph
// APIs. Every optional field is a pointer or omitempty so the encoded payload
// matches what the Graph API expects.

type GraphIDResponse struct {
	ID string `json:"id"`
}

type GraphStatusResponse struct {
	StatusCode string `json:"status_code"`
	Status     string `json:"status"`
	ID         string `json:"id"`
}

type FacebookPhotoRequest struct {
	URL         string `json:"url"`
	Caption     string `json:"caption,omitempty"`
	Published   *bool  `json:"published,omitempty"`
	AccessToken string `json:"access_token"`
}

type FacebookVideoRequest struct {
	FileURL     string `json:"file_url"`
	Description string `json:"description,omitempty"`
	AccessToken string `json:"access_token"`
}

type FacebookAttachedMedia struct {
	MediaFBID string `json:"media_fbid"`
}

type FacebookFeedRequest struct {
	Message       string                  `json:"message,omitempty"`
	AttachedMedia []FacebookAttachedMedia `json:"attached_media"`
	AccessToken   string                  `json:"access_token"`
}

type InstagramMediaRequest struct {
	ImageURL       string   `json:"image_url,omitempty"`
	VideoURL       string   `json:"video_url,omitempty"`
	MediaType      string   `json:"media_type,omitempty"` // REELS, CAROUSEL
	Caption        string   `json:"caption,omitempty"`
	CoverURL       string   `json:"cover_url,omitempty"`
	LocationID     string   `json:"location_id,omitempty"`
	IsCarouselItem bool     `json:"is_carousel_item,omitempty"`
	Children       []string `json:"children,omitempty"`
	AccessToken    string   `json:"access_token"`
}

type InstagramPublishRequest struct {
	CreationID  string `json:"creation_id"`
	AccessToken string `json:"access_token"`
}

type ThreadsMediaRequest struct {
	MediaType      string `json:"media_type"` // TEXT, IMAGE, VIDEO, CAROUSEL
	Text           string `json:"text,omitempty"`
	ImageURL       string `json:"image_url,omitempty"`
	VideoURL       string `json:"video_url,omitempty"`
	IsCarouselItem bool   `json:"is_carousel_item,omitempty"`
	Children       string `json:"children,omitempty"` // comma-separated ids
	ReplyToID      string `json:"reply_to_id,omitempty"`
	AccessToken    string `json:"access_token"`
}

type ThreadsPublishRequest struct {
	CreationID  string `json:"creation_id"`
	AccessToken string `json:"access_token"`
}
