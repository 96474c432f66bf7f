package requestor

import "testing"

func TestExtractJSONBlock(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "```json\n{\"a\":1}\n```", "{\"a\":1}\n"},
		{"surrounding prose", "Sure!\n```json\n{\"a\":1}\n```\nDone.", "{\"a\":1}\n"},
		{"first of two", "```json\n{\"a\":1}```\n```json\n{\"b\":2}```", "{\"a\":1}"},
		{"language suffix", "```jsonc\n{\"a\":1}```", "{\"a\":1}"},
		{"no newline after tag", "```json {\"a\":1} ```", " {\"a\":1} "},
		{"whitespace kept", "```json\n  [1, 2]  \n\n```", "  [1, 2]  \n\n"},
		{"empty block", "```json\n```", ""},
		{"no block", "{\"a\":1}", "{\"a\":1}"},
		{"other language", "```python\nprint(1)\n```", "```python\nprint(1)\n```"},
		{"unclosed fence", "```json\n{\"a\":1}", "```json\n{\"a\":1}"},
		{"empty input", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractJSONBlock(tc.in); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
}
