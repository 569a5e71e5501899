package translate

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// ![{...media json...}](url)
	mediaDirective = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	mediaType      = regexp.MustCompile(`"type"\s*:\s*"([^"]+)"`)
	boldMarker     = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// CleanDescription converts the store's markdown-ish description into plain
// inline HTML: embedded image directives become <img> tags, other media
// directives (trailers etc.) are stripped, bold markers become <b> tags and
// newlines become line breaks.
func CleanDescription(raw string) string {
	if raw == "" {
		return ""
	}

	out := mediaDirective.ReplaceAllStringFunc(raw, func(directive string) string {
		groups := mediaDirective.FindStringSubmatch(directive)
		meta, url := groups[1], groups[2]
		if m := mediaType.FindStringSubmatch(meta); m != nil && m[1] == "image" {
			return fmt.Sprintf(`<img src=%q/>`, url)
		}
		return ""
	})

	out = boldMarker.ReplaceAllString(out, "<b>$1</b>")

	out = strings.ReplaceAll(out, "\r\n", "\n")
	out = strings.ReplaceAll(out, "\n", "<br>")

	return out
}
