package publisher

import (
	"strings"

	"github.com/crosspost-app/crosspost/internal/media"
)

func tempImageKey(contentType string) string {
	return media.TempKey(extensionFor(contentType, ".jpg"))
}

func tempVideoKey(contentType string) string {
	return media.TempKey(extensionFor(contentType, ".mp4"))
}

func extensionFor(contentType, fallback string) string {
	switch {
	case strings.Contains(contentType, "png"):
		return ".png"
	case strings.Contains(contentType, "gif"):
		return ".gif"
	case strings.Contains(contentType, "webp"):
		return ".webp"
	case strings.Contains(contentType, "jpeg"), strings.Contains(contentType, "jpg"):
		return ".jpg"
	case strings.Contains(contentType, "quicktime"):
		return ".mov"
	case strings.Contains(contentType, "webm"):
		return ".webm"
	case strings.Contains(contentType, "mp4"):
		return ".mp4"
	default:
		return fallback
	}
}
