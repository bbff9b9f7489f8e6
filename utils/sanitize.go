package utils

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.UGCPolicy()

// Sanitize cleans HTML content to prevent XSS attacks.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}

// SanitizeHTML is the template form of Sanitize: the cleaned markup is
// trusted so html/template does not escape it a second time.
func SanitizeHTML(input string) template.HTML {
	return template.HTML(sanitizer.Sanitize(input))
}
