package transcript

import (
	"regexp"
	"strconv"
	"strings"
)

var numericEntityRe = regexp.MustCompile(`&#(\d+);`)

var entityReplacer = strings.NewReplacer(
	"&#39;", "'",
	"&#x27;", "'",
	"&quot;", `"`,
	"&lt;", "<",
	"&gt;", ">",
	"&nbsp;", " ",
)

// decodeEntities undoes the HTML escaping YouTube applies to caption text.
// &amp; is handled first so double-encoded entities like &amp;#39; decode
// fully in one pass.
func decodeEntities(text string) string {
	decoded := strings.ReplaceAll(text, "&amp;", "&")
	decoded = entityReplacer.Replace(decoded)
	decoded = numericEntityRe.ReplaceAllStringFunc(decoded, func(m string) string {
		code, err := strconv.Atoi(m[2 : len(m)-1])
		if err != nil {
			return m
		}
		return string(rune(code))
	})
	return decoded
}

// cleanCaptionText decodes entities and flattens caption newlines to spaces.
func cleanCaptionText(text string) string {
	flat := strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(decodeEntities(flat))
}
