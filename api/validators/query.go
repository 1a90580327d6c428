package validators

import (
	"net/http"
)

// QueryString returns the trimmed query parameter, truncated to maxLen.
func QueryString(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.URL.Query().Get(key), maxLen)
}
