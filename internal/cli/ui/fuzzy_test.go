package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2   string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"new:readme", "new:readm", 1},
		{"docs:build", "docs:biuld", 2},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"_"+tt.s2, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevenshteinDistance(tt.s1, tt.s2))
		})
	}
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"new:pyproject", "new:readme", "new:nox", "docs:build", "docs:config"}

	tests := []struct {
		name     string
		target   string
		opts     *FuzzyMatchOptions
		expected []string
	}{
		{"exact match", "new:nox", nil, []string{"new:nox"}},
		{"typo", "new:pyprojct", nil, []string{"new:pyproject"}},
		{"case insensitive", "NEW:README", nil, []string{"new:readme"}},
		{
			name:     "case sensitive",
			target:   "NEW:README",
			opts:     &FuzzyMatchOptions{CaseSensitive: true},
			expected: []string{},
		},
		{"no match too far", "zzz", nil, []string{}},
		{
			name:     "max suggestions limit",
			target:   "docs:bild",
			opts:     &FuzzyMatchOptions{MaxDistance: 5, MaxSuggestions: 1},
			expected: []string{"docs:build"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FindSimilar(tt.target, candidates, tt.opts))
		})
	}
}

func TestFindSimilarDoesNotMutateOptions(t *testing.T) {
	opts := &FuzzyMatchOptions{}
	FindSimilar("new", []string{"new:nox"}, opts)
	assert.Equal(t, 0, opts.MaxDistance)
	assert.Equal(t, 0, opts.MaxSuggestions)
}

func TestFindSimilarEmptyCandidates(t *testing.T) {
	assert.Empty(t, FindSimilar("new", nil, nil))
}
