package filters

import "testing"

func TestOfAlphabet_IsBijective(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "a"},
		{1, "b"},
		{25, "z"},
		{26, "aa"},
		{27, "ab"},
		{51, "az"},
		{52, "ba"},
		{701, "zz"},
		{702, "aaa"},
	}

	seen := map[string]bool{}
	for _, tt := range tests {
		got := OfAlphabet(tt.n)
		if got != tt.want {
			t.Fatalf("OfAlphabet(%d) = %q, want %q", tt.n, got, tt.want)
		}
		if seen[got] {
			t.Fatalf("OfAlphabet produced duplicate output %q for n=%d", got, tt.n)
		}
		seen[got] = true
	}
}

func TestRoman(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "I"},
		{4, "IV"},
		{9, "IX"},
		{1994, "MCMXCIV"},
		{3999, "MMMCMXCIX"},
	}
	for _, tt := range tests {
		if got := Roman(tt.n); got != tt.want {
			t.Fatalf("Roman(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestDot(t *testing.T) {
	tests := []struct{ in, want string }{
		{"hello", "hello."},
		{"hello.", "hello."},
		{"", ""},
		{"   ", "   "},
	}
	for _, tt := range tests {
		if got := Dot(tt.in); got != tt.want {
			t.Fatalf("Dot(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExtract(t *testing.T) {
	obj := map[string]any{"a": 1, "b": 2, "c": 3}
	got := Extract(obj, []string{"a", "missing", "c"})
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Fatalf("Extract() = %v, want [1 3]", got)
	}
}

func TestReplyValueHelpers(t *testing.T) {
	reply := map[string]any{"value": map[string]any{"value": "42"}}
	if got := ReplyStrValue(reply); got != "42" {
		t.Fatalf("ReplyStrValue() = %q, want 42", got)
	}
	if got := ReplyIntValue(reply); got != 42 {
		t.Fatalf("ReplyIntValue() = %d, want 42", got)
	}
	if got := ReplyFloatValue(reply); got != 42 {
		t.Fatalf("ReplyFloatValue() = %v, want 42", got)
	}

	empty := map[string]any{}
	if got := ReplyStrValue(empty); got != "" {
		t.Fatalf("ReplyStrValue(empty) = %q, want empty", got)
	}
}

func TestFindReply(t *testing.T) {
	replies := map[string]any{
		"q1": map[string]any{"value": map[string]any{"value": "yes"}},
	}
	if got := FindReply(replies, "q1", "string"); got != "yes" {
		t.Fatalf("FindReply() = %v, want yes", got)
	}
	if got := FindReply(replies, "missing", "string"); got != nil {
		t.Fatalf("FindReply(missing) = %v, want nil", got)
	}
}

func TestNotEmpty(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"nil", nil, false},
		{"empty string", "", false},
		{"non-empty string", "x", true},
		{"empty slice", []any{}, false},
		{"non-empty slice", []any{1}, true},
		{"zero int is not empty", 0, true},
		{"false is not empty", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NotEmpty(tt.in); got != tt.want {
				t.Fatalf("NotEmpty(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDatetimeFormat(t *testing.T) {
	got := DatetimeFormat("2021-03-04T10:20:30.123456", "2006-01-02")
	if got != "2021-03-04" {
		t.Fatalf("DatetimeFormat() = %q, want 2021-03-04", got)
	}
	if got := DatetimeFormat("", "2006-01-02"); got != "" {
		t.Fatalf("DatetimeFormat(empty) = %q, want empty", got)
	}
}
