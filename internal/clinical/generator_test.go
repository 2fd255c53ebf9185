package clinical

import "testing"

func TestStripFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\nDoctor: hi\n```\n", "Doctor: hi"},
		{"leading only", "```\nDoctor: hi", "Doctor: hi"},
		{"no fence", "  Doctor: hi  ", "Doctor: hi"},
		{"inner fence kept", "a\n```\nb", "a\n```\nb"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripFence(tc.in); got != tc.want {
				t.Fatalf("unexpected: got=%q want=%q", got, tc.want)
			}
		})
	}
}
