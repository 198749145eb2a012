package structured

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)\\n?```")

// ExtractJSON strips markdown fences and surrounding prose from a model
// response, returning the best-effort JSON payload. Models routinely wrap
// their output in ```json blocks or add a leading sentence despite being
// told not to.
func ExtractJSON(response string) string {
	response = strings.TrimSpace(response)

	if strings.Contains(response, "```") {
		if m := fenceRe.FindStringSubmatch(response); len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
	}

	// Whichever bracket opens first wins, so an array of objects yields the
	// array rather than its first element.
	objStart := strings.Index(response, "{")
	arrStart := strings.Index(response, "[")
	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		if end := strings.LastIndex(response, "]"); end > arrStart {
			return response[arrStart : end+1]
		}
	}
	if objStart >= 0 {
		if end := strings.LastIndex(response, "}"); end > objStart {
			return response[objStart : end+1]
		}
	}
	return response
}
