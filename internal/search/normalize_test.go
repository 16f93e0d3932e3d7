package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "My Cat VIDEO", "my cat video"},
		{"underscores become spaces", "My_Cat_Video", "my cat video"},
		{"strips punctuation", "  The Cat!! ", "the cat"},
		{"collapses whitespace", "a   b\t\nc", "a b c"},
		{"keeps digits", "Trip 2024 (day 3)", "trip 2024 day 3"},
		{"empty", "", ""},
		{"only punctuation", "!!! ???", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{"My_Cat_Video", "  The Cat!! ", "already normal", "trip 2024"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"stop words removed", "  The Cat!! ", []string{"cat"}},
		{"dedupe keeps first occurrence", "cat dog cat bird dog", []string{"cat", "dog", "bird"}},
		{"all stop words", "the and of", nil},
		{"whitespace only", "   ", nil},
		{"empty", "", nil},
		{"mixed", "A_Trip to the Beach", []string{"trip", "beach"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokens(tt.input))
		})
	}
}
