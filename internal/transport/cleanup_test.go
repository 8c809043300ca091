package transport

import "testing"

func TestCleanTextStripsEOSAndWhitespace(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"\n\nhello<|im_end|>", "hello"},
		{"hello</s>  \n", "hello"},
		{"hello<|eot_id|>\t", "hello"},
		{"plain text", "plain text"},
	}
	for _, c := range cases {
		got := cleanText(c.in)
		if got != c.want {
			t.Errorf("cleanText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
