package publisher

import (
	"strings"

	"github.com/crosspost-app/crosspost/internal/models"
)

// hashtagPlatforms is a hard allowlist: platforms absent from it silently
// drop tags.
var hashtagPlatforms = map[string]bool{
	models.PlatformInstagram: true,
	models.PlatformTiktok:    true,
	models.PlatformThreads:   true,
	models.PlatformFacebook:  true,
	models.PlatformX:         true,
	models.PlatformBluesky:   true,
}

// FormatCaptionWithTags appends "#tag" tokens to text for platforms on the
// hashtag allowlist and returns text unchanged everywhere else.
func FormatCaptionWithTags(text string, tags []string, platform string) string {
	if len(tags) == 0 {
		return text
	}
	if !hashtagPlatforms[platform] {
		return text
	}

	tokens := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(tag), "#"))
		if tag == "" {
			continue
		}
		tokens = append(tokens, "#"+tag)
	}
	if len(tokens) == 0 {
		return text
	}

	tagLine := strings.Join(tokens, " ")
	if text == "" {
		return tagLine
	}
	return text + "\n\n" + tagLine
}
