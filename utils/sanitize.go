package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize cleans HTML content to prevent XSS attacks. Applied to
// admin-supplied product descriptions and user-supplied order notes.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
