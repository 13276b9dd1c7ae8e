package access

import (
	"errors"
	"strconv"
	"strings"

	"github.com/schoolsite/portal-backend/internal/model"
)

// ErrInvalidDeepLink is returned for fragments that do not name a content item.
var ErrInvalidDeepLink = errors.New("invalid deep link")

// deepLinkPrefixes maps fragment prefixes to the content they open.
var deepLinkPrefixes = map[string]model.ContentKind{
	"news":     model.ContentNews,
	"activity": model.ContentActivities,
	"media":    model.ContentMedia,
}

// ParseDeepLink decodes a fragment such as "#news-detail-12".
func ParseDeepLink(hash string) (model.ContentKind, int64, error) {
	prefix, rawID, ok := strings.Cut(strings.TrimPrefix(hash, "#"), "-detail-")
	if !ok {
		return "", 0, ErrInvalidDeepLink
	}
	kind, ok := deepLinkPrefixes[prefix]
	if !ok {
		return "", 0, ErrInvalidDeepLink
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || id <= 0 {
		return "", 0, ErrInvalidDeepLink
	}
	return kind, id, nil
}

// DeepLink builds the fragment that opens a content item.
func DeepLink(kind model.ContentKind, id int64) string {
	for prefix, k := range deepLinkPrefixes {
		if k == kind {
			return "#" + prefix + "-detail-" + strconv.FormatInt(id, 10)
		}
	}
	return ""
}
