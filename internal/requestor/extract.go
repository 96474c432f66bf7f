package requestor

import "regexp"

var jsonBlockRe = regexp.MustCompile("(?s)```json(?:[a-zA-Z0-9]*\n)?(.*?)```")

// ExtractJSONBlock returns the body of the first ```json fenced block in text,
// verbatim. If there is no such block the text is returned unchanged.
func ExtractJSONBlock(text string) string {
	m := jsonBlockRe.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	return m[1]
}
