package speech

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text untouched",
			in:   "hello world",
			want: "hello world",
		},
		{
			name: "markup and links",
			in:   "**Hello** `code` [link](https://example.com) # done",
			want: "Hello link done",
		},
		{
			name: "fenced code block removed",
			in:   "before\n```go\nfunc main() {}\n```\nafter",
			want: "before after",
		},
		{
			name: "inline code removed",
			in:   "run `go test` now",
			want: "run now",
		},
		{
			name: "link keeps its label",
			in:   "see [the docs](https://example.com/docs) for details",
			want: "see the docs for details",
		},
		{
			name: "emphasis stripped",
			in:   "this is *important* and __bold__ and ~~gone~~",
			want: "this is important and bold and gone",
		},
		{
			name: "decorative glyphs stripped",
			in:   "✅ done → next ⚠️ careful",
			want: "done next careful",
		},
		{
			name: "unqualified glyph variants stripped",
			in:   "⚠ warning ✔ passed ✖ failed",
			want: "warning passed failed",
		},
		{
			name: "whitespace collapsed",
			in:   "a\n\n\tb   c",
			want: "a b c",
		},
		{
			name: "empty after stripping",
			in:   "```\nonly code\n```",
			want: "",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"**Hello** `code` [link](https://example.com) # done",
		"before\n```sh\nls\n```\nafter",
		"plain",
	}
	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
