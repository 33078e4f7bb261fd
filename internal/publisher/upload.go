package publisher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// putDeclaredChunk transfers a whole buffer as one declared chunk, the
// single-shot flavor TikTok's FILE_UPLOAD protocol expects. The buffer is
// never split even though the protocol supports multiple chunks.
func (d deps) putDeclaredChunk(ctx context.Context, platform, uploadURL string, body []byte, contentType string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(body))
	if err != nil {
		return &UploadError{Platform: platform, Stage: "chunk put", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	req.Header.Set("Content-Range", fmt.Sprintf("bytes 0-%d/%d", len(body)-1, len(body)))

	resp, err := d.client.Do(req)
	if err != nil {
		return &UploadError{Platform: platform, Stage: "chunk put", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return &UploadError{
			Platform: platform,
			Stage:    "chunk put",
			Err:      &APIError{Platform: platform, StatusCode: resp.StatusCode, Body: truncateBody(respBody)},
		}
	}
	return nil
}

// putRegistered transfers raw bytes to an upload URL obtained from a
// register-upload call, the two-phase flavor LinkedIn uses. The asset URN
// returned by registration, not this URL, is what later requests reference.
func (d deps) putRegistered(ctx context.Context, platform, uploadURL string, body []byte, contentType string, headers map[string]string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, bytes.NewReader(body))
	if err != nil {
		return &UploadError{Platform: platform, Stage: "registered put", Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return &UploadError{Platform: platform, Stage: "registered put", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return &UploadError{
			Platform: platform,
			Stage:    "registered put",
			Err:      &APIError{Platform: platform, StatusCode: resp.StatusCode, Body: truncateBody(respBody)},
		}
	}
	return nil
}
