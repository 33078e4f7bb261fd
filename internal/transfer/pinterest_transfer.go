package transfer

// Pinterest API v5 shapes.

type PinterestMediaSource struct {
	SourceType    string `json:"source_type"` // image_url, video_id
	URL           string `json:"url,omitempty"`
	MediaID       string `json:"media_id,omitempty"`
	CoverImageURL string `json:"cover_image_url,omitempty"`
}

type PinterestPinRequest struct {
	BoardID     string               `json:"board_id"`
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
	Link        string               `json:"link,omitempty"`
	MediaSource PinterestMediaSource `json:"media_source"`
}

type PinterestPinResponse struct {
	ID string `json:"id"`
}

type PinterestMediaRegisterRequest struct {
	MediaType string `json:"media_type"`
}

type PinterestMediaRegisterResponse struct {
	MediaID          string            `json:"media_id"`
	MediaType        string            `json:"media_type"`
	UploadURL        string            `json:"upload_url"`
	UploadParameters map[string]string `json:"upload_parameters"`
}

type PinterestMediaStatusResponse struct {
	MediaID string `json:"media_id"`
	Status  string `json:"status"` // registered, processing, succeeded, failed
}
