// File: internal/category/slug.go
package category

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	dashRuns        = regexp.MustCompile(`-+`)
)

// Slugify lowercases name, turns every run of non-alphanumeric characters into one hyphen
// and trims hyphens from both ends. Slugify(Slugify(x)) == Slugify(x).
func Slugify(name string) string {
	s := slug.Make(nonAlphanumeric.ReplaceAllString(name, " "))
	s = strings.ReplaceAll(s, "_", "-")
	s = dashRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
