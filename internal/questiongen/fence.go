package questiongen

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)^```(\\w*)?\\s*\\n?(.*?)\\n?\\s*```$")

// StripFence removes one surrounding markdown code fence, if present, and
// trims the result. Unfenced text is returned trimmed.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if m := fenceRe.FindStringSubmatch(s); m != nil && m[2] != "" {
		return strings.TrimSpace(m[2])
	}
	return s
}
