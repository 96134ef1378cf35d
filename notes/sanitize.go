package notes

import (
	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer cleans user supplied rich text.
type Sanitizer interface {
	Sanitize(html string) string
}

// NewSanitizer allows user generated markup plus images, link targets and
// inline styles.
func NewSanitizer() Sanitizer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("src", "alt").OnElements("img")
	policy.AllowAttrs("href", "name", "target").OnElements("a")
	policy.AllowAttrs("style").Globally()

	return policy
}
