package translate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanDescription(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain text", "Hello world", "Hello world"},
		{
			"image directive becomes img tag",
			`Look: ![{"type":"image","width":600}](https://cdn.example/a.jpg)`,
			`Look: <img src="https://cdn.example/a.jpg"/>`,
		},
		{
			"video directive is stripped",
			`Watch ![{"type":"video"}](https://cdn.example/trailer.mp4) now`,
			"Watch  now",
		},
		{
			"directive without media type is stripped",
			`![banner](https://cdn.example/b.png)`,
			"",
		},
		{
			"bold markers",
			"a **bold** statement",
			"a <b>bold</b> statement",
		},
		{
			"newlines become breaks",
			"line one\r\nline two\nline three",
			"line one<br>line two<br>line three",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanDescription(tc.in))
		})
	}
}
