package transfer

// LinkedIn v2 UGC API shapes.

const (
	LinkedInImageRecipe = "urn:li:digitalmediaRecipe:feedshare-image"
	LinkedInVideoRecipe = "urn:li:digitalmediaRecipe:feedshare-video"
)

type LinkedInServiceRelationship struct {
	RelationshipType string `json:"relationshipType"`
	Identifier       string `json:"identifier"`
}

type LinkedInRegisterUpload struct {
	Recipes              []string                      `json:"recipes"`
	Owner                string                        `json:"owner"`
	ServiceRelationships []LinkedInServiceRelationship `json:"serviceRelationships"`
}

type LinkedInRegisterUploadRequest struct {
	RegisterUploadRequest LinkedInRegisterUpload `json:"registerUploadRequest"`
}

type LinkedInUploadHTTPRequest struct {
	UploadURL string            `json:"uploadUrl"`
	Headers   map[string]string `json:"headers"`
}

type LinkedInUploadMechanism struct {
	MediaUploadHTTPRequest LinkedInUploadHTTPRequest `json:"com.linkedin.digitalmedia.uploading.MediaUploadHttpRequest"`
}

type LinkedInRegisterUploadValue struct {
	UploadMechanism LinkedInUploadMechanism `json:"uploadMechanism"`
	Asset           string                  `json:"asset"`
}

type LinkedInRegisterUploadResponse struct {
	Value LinkedInRegisterUploadValue `json:"value"`
}

type LinkedInText struct {
	Text string `json:"text"`
}

type LinkedInMedia struct {
	Status string `json:"status"`
	Media  string `json:"media"` // content-asset URN, never the upload URL
}

type LinkedInShareContent struct {
	ShareCommentary    LinkedInText    `json:"shareCommentary"`
	ShareMediaCategory string          `json:"shareMediaCategory"` // NONE, IMAGE, VIDEO
	Media              []LinkedInMedia `json:"media,omitempty"`
}

type LinkedInSpecificContent struct {
	ShareContent LinkedInShareContent `json:"com.linkedin.ugc.ShareContent"`
}

type LinkedInVisibility struct {
	MemberNetworkVisibility string `json:"com.linkedin.ugc.MemberNetworkVisibility"`
}

type LinkedInUGCPostRequest struct {
	Author          string                  `json:"author"`
	LifecycleState  string                  `json:"lifecycleState"`
	SpecificContent LinkedInSpecificContent `json:"specificContent"`
	Visibility      LinkedInVisibility      `json:"visibility"`
}

type LinkedInUGCPostResponse struct {
	ID string `json:"id"`
}
