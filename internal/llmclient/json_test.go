package llmclient

import "testing"

func TestExtractJSONStripsFence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"title":"a"}`, `{"title":"a"}`},
		{"```json\n{\"title\":\"a\"}\n```", `{"title":"a"}`},
		{"```\n{\"title\":\"a\"}\n```", `{"title":"a"}`},
		{"Sure, here you go:\n{\"title\":\"a\"}\nLet me know if that helps.", `{"title":"a"}`},
	}
	for _, c := range cases {
		if got := ExtractJSON(c.in); got != c.want {
			t.Errorf("ExtractJSON(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
