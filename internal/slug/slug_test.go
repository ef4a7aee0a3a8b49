// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package slug

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"punctuation", "My Test Data!!", "my-test-data"},
		{"accents stripped", "Über Ähnlichkeit", "uber-ahnlichkeit"},
		{"ligature decomposed", "ﬁnite elements", "finite-elements"},
		{"dash runs collapse", "a -- b", "a-b"},
		{"tabs and newlines", "a\t\nb", "a-b"},
		{"vertical tab", "a\vb", "a-b"},
		{"form feed and carriage return", "a\f\rb", "a-b"},
		{"information separators", "a\x1cb\x1fc", "a-b-c"},
		{"trim edges", "  -_Hello_-  ", "hello"},
		{"underscore kept inside", "snake_case name", "snake_case-name"},
		{"digits", "Dataset 2024 (v2)", "dataset-2024-v2"},
		{"only symbols", "!!! ???", ""},
		{"non latin dropped", "数据 data", "data"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.input))
		})
	}
}

func TestMakeUnicode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"keeps letters", "Über Ähnlichkeit", "über-ähnlichkeit"},
		{"keeps cjk", "数据 data", "数据-data"},
		{"ideographic space", "a　b", "a-b"},
		{"drops symbols", "x € y", "x-y"},
		{"vertical tab", "a\vb", "a-b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MakeUnicode(tt.input))
		})
	}
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

var propertyInputs = []string{
	"My Test Data!!",
	"  leading and trailing  ",
	"---",
	"a - - b",
	"Simulation results: run #42 / part 3",
	"Ça va? Très bien.",
	"x y",
	"MIXED case AND 123",
	"\t\n",
	"tab\tseparated\tvalues",
	"emoji 🚀 launch",
}

func TestMakeIdempotent(t *testing.T) {
	for _, s := range append(propertyInputs, "snake_case __x__", "a_-_b") {
		once := Make(s)
		assert.Equal(t, once, Make(once), "input %q", s)
	}
}

func TestMakeUnicodeIdempotent(t *testing.T) {
	for _, s := range propertyInputs {
		once := MakeUnicode(s)
		assert.Equal(t, once, MakeUnicode(once), "input %q", s)
	}
}

func TestMakeOutputShape(t *testing.T) {
	for _, s := range propertyInputs {
		got := Make(s)
		if got == "" {
			continue
		}
		assert.Regexp(t, slugPattern, got, "input %q", s)
	}
}
