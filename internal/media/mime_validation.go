package media

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var profileImageTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}

var profileImageNames = map[string]string{
	"image/png":  "PNG",
	"image/jpeg": "JPEG",
	"image/gif":  "GIF",
	"image/webp": "WebP",
}

var profileImageDescription = describeTypes(profileImageTypes)

func describeTypes(types []string) string {
	names := make([]string, 0, len(types))
	for _, value := range types {
		names = append(names, profileImageNames[value])
	}
	return humanReadableList(names)
}

func humanReadableList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return fmt.Sprintf("%s or %s", items[0], items[1])
	default:
		return fmt.Sprintf("%s or %s", strings.Join(items[:len(items)-1], ", "), items[len(items)-1])
	}
}

// sniffImageType detects the content type from the file bytes; the
// multipart header is not consulted.
func sniffImageType(data []byte) (string, bool) {
	detected := mimetype.Detect(data)
	for _, allowed := range profileImageTypes {
		if detected.Is(allowed) {
			return allowed, true
		}
	}
	return detected.String(), false
}
