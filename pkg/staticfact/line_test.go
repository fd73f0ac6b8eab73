// SPDX-License-Identifier: MPL-2.0

package staticfact

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want Line
	}{
		{name: "empty", raw: "", want: Line{Kind: KindBlank}},
		{name: "whitespace only", raw: " \t ", want: Line{Kind: KindBlank}},
		{name: "carriage return", raw: "\r", want: Line{Kind: KindBlank}},
		{name: "comment", raw: "# foo=bar", want: Line{Kind: KindComment}},
		{name: "indented comment", raw: "   # include /etc/x", want: Line{Kind: KindComment}},
		{name: "include file", raw: "include /etc/facts.d/answer.fact", want: Line{Kind: KindInclude, Pattern: "/etc/facts.d/answer.fact"}},
		{name: "include glob", raw: "include    /etc/facts.d/*.fact  ", want: Line{Kind: KindInclude, Pattern: "/etc/facts.d/*.fact"}},
		{name: "include tab", raw: "include\t~/.facts.d/*.fact", want: Line{Kind: KindInclude, Pattern: "~/.facts.d/*.fact"}},
		{name: "bare include keyword", raw: "include", want: Line{Kind: KindMalformed}},
		{name: "assignment", raw: "foo=bar", want: Line{Kind: KindAssignment, Key: "foo", Value: "bar"}},
		{name: "assignment with spaces", raw: "foo = bar", want: Line{Kind: KindAssignment, Key: "foo", Value: "bar"}},
		{name: "assignment with wide spaces", raw: "foo   =   bar", want: Line{Kind: KindAssignment, Key: "foo", Value: "bar"}},
		{name: "assignment with crlf", raw: "\tanswer=42\r", want: Line{Kind: KindAssignment, Key: "answer", Value: "42"}},
		{name: "value containing equals", raw: "url=http://x/?a=b", want: Line{Kind: KindAssignment, Key: "url", Value: "http://x/?a=b"}},
		{name: "value containing spaces", raw: "motd = hello world", want: Line{Kind: KindAssignment, Key: "motd", Value: "hello world"}},
		{name: "key looks like include", raw: "includes=none", want: Line{Kind: KindAssignment, Key: "includes", Value: "none"}},
		{name: "digit key is still an assignment", raw: "1x=val", want: Line{Kind: KindAssignment, Key: "1x", Value: "val"}},
		{name: "no separator", raw: "just some text", want: Line{Kind: KindMalformed}},
		{name: "empty key", raw: "=value", want: Line{Kind: KindMalformed}},
		{name: "blank key", raw: "  = value", want: Line{Kind: KindMalformed}},
		{name: "empty value", raw: "key=", want: Line{Kind: KindMalformed}},
		{name: "empty value with space", raw: "key = ", want: Line{Kind: KindMalformed}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.raw); got != tt.want {
				t.Errorf("Classify(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLineKind_String(t *testing.T) {
	t.Parallel()

	kinds := map[LineKind]string{
		KindMalformed:  "malformed",
		KindBlank:      "blank",
		KindComment:    "comment",
		KindInclude:    "include",
		KindAssignment: "assignment",
		LineKind(99):   "malformed",
	}
	for kind, want := range kinds {
		if got := kind.String(); got != want {
			t.Errorf("LineKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}
